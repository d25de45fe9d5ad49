package journal

// Config is the configuration of the relayed transactions journal
type Config struct {
	// DBPath is the path of the SQLite database. The journal is disabled when empty
	DBPath string `mapstructure:"DBPath"`
}
