package config

const (
	defaultStateDir         = "~/.local/share/reelsync"
	defaultLogDir           = "~/.local/share/reelsync/logs"
	defaultPrefixBytes      = 1 << 20 // 1 MiB
	defaultWorkers          = 4
	defaultSimilarityFloor  = 0.35
	defaultDedupPolicy      = "keep-newest"
	defaultDebounceSeconds  = 2
	defaultRescanMinutes    = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultFingerprintOnIns = true
)

// defaultExtensions is the video suffix set recognized during scans.
var defaultExtensions = []string{
	".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	exts := make([]string, len(defaultExtensions))
	copy(exts, defaultExtensions)
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Scan: Scan{
			Extensions:   exts,
			MinSizeBytes: 0,
		},
		Fingerprint: Fingerprint{
			PrefixBytes: defaultPrefixBytes,
			OnInsert:    defaultFingerprintOnIns,
		},
		Reconcile: Reconcile{
			Workers:         defaultWorkers,
			SimilarityFloor: defaultSimilarityFloor,
		},
		Dedup: Dedup{
			Policy: defaultDedupPolicy,
		},
		Watch: Watch{
			DebounceSeconds: defaultDebounceSeconds,
			RescanMinutes:   defaultRescanMinutes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
