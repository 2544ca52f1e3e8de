package config

const (
	DefaultKiCadCLI      = "kicad-cli"
	DefaultKiBOM         = "kibom"
	DefaultNotifySubject = "kixport.boards"
)

// applyDefaults fills optional settings. Board variants are left empty here;
// the implicit "no filter" variant is synthesized by the board package.
func applyDefaults(cfg *Config) {
	if cfg.Settings.Tools.KiCadCLI == "" {
		cfg.Settings.Tools.KiCadCLI = DefaultKiCadCLI
	}
	if cfg.Settings.Tools.KiBOM == "" {
		cfg.Settings.Tools.KiBOM = DefaultKiBOM
	}
	if n := cfg.Settings.Notify; n != nil && n.Subject == "" {
		n.Subject = DefaultNotifySubject
	}
}
