package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the rendered report.
	OutputMode string

	// SweepMode selects which sweep groups are evaluated.
	SweepMode string

	// SectionName names a top-level section of the compliance schema.
	SectionName string

	// Outcome is the classification assigned to a single result row.
	Outcome string

	// Applicability is the requirement level declared by the schema.
	Applicability string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	PDFOut     OutputMode = "pdf"
	ParquetOut OutputMode = "parquet"
)

// All sweep modes supported.
const (
	AllSweeps  SweepMode = "f"
	FirstSweep SweepMode = "o" // default
)

// Sections recognized in a compliance schema document, in evaluation order.
const (
	GlobalAttributesSection SectionName = "Global_Attributes"
	AncillarySection        SectionName = "Global_Ancillary_variables"
	SweepVariablesSection   SectionName = "sweep_variables"
	DataVariablesSection    SectionName = "data_variables"
	RadarParametersSection  SectionName = "radar_parameters"
	RadarCalibrationSection SectionName = "radar_calibration"
)

// AllowedValuesKey is the top-level key of the allowed-values table.
const AllowedValuesKey = "allowed_values"

// All outcomes a row can be classified into.
const (
	Pass          Outcome = "pass"
	FailMandatory Outcome = "fail_mandatory"
	FailOptional  Outcome = "fail_optional"
	NotUsed       Outcome = "not_used"
)

// Requirement levels.
const (
	Mandatory Applicability = "Mandatory"
	Optional  Applicability = "Optional" // default
)

// DatasetRequirement is the requirement label of dataset existence rows.
const DatasetRequirement = "dataset"

// Sweep group naming.
const (
	SweepPrefix      = "sweep_"
	SweepPlaceholder = "<n>"
	SweepToken       = SweepPrefix + SweepPlaceholder
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// SectionOrder lists the item sections in evaluation order.
var SectionOrder = []SectionName{
	GlobalAttributesSection,
	AncillarySection,
	SweepVariablesSection,
	DataVariablesSection,
	RadarParametersSection,
	RadarCalibrationSection,
}

// ValidSections lists all item sections of a schema document.
var ValidSections = map[SectionName]struct{}{
	GlobalAttributesSection: {},
	AncillarySection:        {},
	SweepVariablesSection:   {},
	DataVariablesSection:    {},
	RadarParametersSection:  {},
	RadarCalibrationSection: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	PDFOut:     {},
	ParquetOut: {},
}

// ValidSweepModes lists all valid sweep modes.
var ValidSweepModes = map[SweepMode]struct{}{
	AllSweeps:  {},
	FirstSweep: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// AllOutcomes lists outcomes in report order.
var AllOutcomes = []Outcome{Pass, FailMandatory, FailOptional, NotUsed}
