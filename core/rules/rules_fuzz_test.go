package rules

import (
	"testing"

	"github.com/huangsam/fm301check/schema"
)

// FuzzClassify checks the decision table invariants over arbitrary inputs.
func FuzzClassify(f *testing.F) {
	f.Add(true, true, "string", "radar", "radar", false)
	f.Add(false, true, "double", "", "", false)
	f.Add(true, false, "float", "1.5", "1.5", true)
	f.Add(true, true, "int", "7", `\d+`, true)

	f.Fuzz(func(t *testing.T, mandatory, available bool, typeName, actual, allowed string, regex bool) {
		app := schema.Optional
		if mandatory {
			app = schema.Mandatory
		}
		tag, _ := schema.ParseTypeTag(typeName)
		c := Check{
			Applicability: app,
			Available:     available,
			Expected:      tag,
			ActualType:    schema.StringType,
			Actual:        schema.Value{Type: schema.StringType, Raw: actual},
			Allowed:       schema.AllowedValues{allowed},
			Regex:         regex,
		}
		outcome := Classify(c)

		if !available && mandatory && outcome != schema.FailMandatory {
			t.Fatalf("absent mandatory item classified %s", outcome)
		}
		if !available && !mandatory && outcome != schema.NotUsed {
			t.Fatalf("absent optional item classified %s", outcome)
		}
		if mandatory && outcome == schema.FailOptional {
			t.Fatalf("mandatory item classified fail_optional")
		}
		if !mandatory && outcome == schema.FailMandatory {
			t.Fatalf("optional item classified fail_mandatory")
		}
		if DatasetStrategy.ClassifyAttribute(c) == schema.FailOptional {
			t.Fatalf("dataset attribute classified fail_optional")
		}
	})
}
