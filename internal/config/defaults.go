package config

const (
	defaultConventionJSON   = "~/.config/kerf/convention.json"
	defaultEdgeDir          = "~/.config/kerf/edge_diagrams"
	defaultDataDir          = "~/.local/share/kerf"
	defaultLogDir           = "~/.local/share/kerf/logs"
	defaultPrefsPath        = "~/.config/kerf/prefs.json"
	defaultToolDiameter     = 10.0
	defaultOutputPrefix     = "To_Cutrite"
	defaultPreviewRows      = 50
	defaultBelowToolPattern = `^\S{4,5}2$`
	defaultComponentTag     = `<139 \Komponente\`
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ConventionJSON: defaultConventionJSON,
			EdgeDir:        defaultEdgeDir,
			DataDir:        defaultDataDir,
			LogDir:         defaultLogDir,
			PrefsPath:      defaultPrefsPath,
		},
		Export: Export{
			ToolDiameter:   defaultToolDiameter,
			RemoveMacro124: true,
			OutputPrefix:   defaultOutputPrefix,
			PreviewRows:    defaultPreviewRows,
		},
		MPR: MPR{
			BelowToolPattern: defaultBelowToolPattern,
			ComponentTag:     defaultComponentTag,
			SkipDisabled:     false,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
