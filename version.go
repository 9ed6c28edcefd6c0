package cdavalidator

// CDARelease represents a C-CDA implementation guide release.
type CDARelease string

// Supported C-CDA releases.
const (
	// R11 is Consolidated CDA Release 1.1
	R11 CDARelease = "R1.1"
	// R20 is Consolidated CDA Release 2.0
	R20 CDARelease = "R2.0"
	// R21 is Consolidated CDA Release 2.1
	R21 CDARelease = "R2.1"
)

// String returns the release string.
func (r CDARelease) String() string {
	return string(r)
}

// IsValid returns true if this is a supported C-CDA release.
func (r CDARelease) IsValid() bool {
	switch r {
	case R11, R20, R21:
		return true
	default:
		return false
	}
}

// ReleaseConfig holds release-specific configuration.
type ReleaseConfig struct {
	// HeaderTemplateID is the US Realm Header template that stamps the release
	HeaderTemplateID string

	// HeaderExtension is the release date qualifier on the header template
	// (empty for R1.1, which predates versioned templates)
	HeaderExtension string

	// SchemaFile is the conventional schema file name for the release
	SchemaFile string

	// RuleFile is the conventional Schematron rule file name for the release
	RuleFile string
}

// releaseConfigs maps C-CDA releases to their configurations.
var releaseConfigs = map[CDARelease]ReleaseConfig{
	R11: {
		HeaderTemplateID: "2.16.840.1.113883.10.20.22.1.1",
		HeaderExtension:  "",
		SchemaFile:       "CDA.xsd",
		RuleFile:         "consolidation-r1.1.sch",
	},
	R20: {
		HeaderTemplateID: "2.16.840.1.113883.10.20.22.1.1",
		HeaderExtension:  "2014-06-09",
		SchemaFile:       "CDA_SDTC.xsd",
		RuleFile:         "consolidation-r2.0.sch",
	},
	R21: {
		HeaderTemplateID: "2.16.840.1.113883.10.20.22.1.1",
		HeaderExtension:  "2015-08-01",
		SchemaFile:       "CDA_SDTC.xsd",
		RuleFile:         "consolidation-r2.1.sch",
	},
}

// GetReleaseConfig returns the configuration for a C-CDA release.
func GetReleaseConfig(r CDARelease) (ReleaseConfig, bool) {
	cfg, ok := releaseConfigs[r]
	return cfg, ok
}
