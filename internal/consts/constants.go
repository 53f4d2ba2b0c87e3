package consts

import (
	"path/filepath"
	"runtime"
	"time"
)

// Constants for the IDP element and audit output defaults
const (
	AppName           = "idpcheck"
	DefaultConfigFile = "idpcheck.yaml"
	EnvPrefix         = "IDPCHECK"
	StateFileName     = "state.json"

	IDPElementName = "DataMiner IDP"
	PropertyName   = "IDP"

	ManagedTableID    = 1100
	ManagedNameColumn = 1104

	UnmanagedTableID    = 1900
	UnmanagedNameColumn = 1903

	RefreshParameterID = 72
	ManageParameterID  = 14
	RefreshValue       = "1"

	NotManagedSentinel   = "<not managed by IDP>"
	NotUnmanagedSentinel = "<not unmanaged by IDP>"

	LogFileSuffix     = ".txt"
	FixListFileSuffix = "ListToFix.csv"

	// FileStampLayout is the sortable UTC layout with ':' replaced by '_'.
	FileStampLayout = "2006-01-02T15_04_05"

	DefaultFixListFormat = "{{.ID}},{{.Name}}"
	DefaultDirectoryFile = "dms.yaml"
	RemanageSeparator    = "|"

	DefaultRemanageDelay = time.Second
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultHTTPRetries   = 3
)

// DefaultOutputDir returns the folder audit files are written to when no
// output_dir is configured.
func DefaultOutputDir() string {
	if runtime.GOOS == "windows" {
		return `C:\Skyline_Data\IDP Investigation\`
	}
	return "idp-investigation"
}

// GetStateFilePath returns the path of the run history inside the output folder.
func GetStateFilePath(outputDir string) string {
	return filepath.Join(outputDir, StateFileName)
}
