package config

const (
	defaultWorkDir            = "~/.local/share/redust"
	defaultModsSubdir         = "mods"
	defaultModdedSubdir       = "bundles_modded"
	defaultStateSubdir        = "state"
	defaultMaintenanceURL     = "https://mt.bd2.pmang.cloud/MaintenanceInfo"
	defaultCDNBaseURL         = "https://cdn.bd2.pmang.cloud/ServerData"
	defaultPlatform           = "Android"
	defaultQuality            = QualityHD
	defaultUserAgent          = "UnityPlayer/2022.3.22f1 (UnityWebRequest/1.0, libcurl/8.5.0-DEV)"
	defaultTimeoutSeconds     = 120
	defaultRetryAttempts      = 3
	defaultRetryBackoffMillis = 500
	defaultMarketInfoField    = 2
	defaultBundleVersionField = 1
	defaultBundleVersionSD    = 2
	defaultBundlePrefix       = "common-skeleton-data"
	defaultBundleSuffix       = "bundle"
	defaultBundleTool         = "redust-bundle"
	defaultTextureFormat      = "RGBA32"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Quality names accepted by the CDN.
const (
	QualityHD = "HD"
	QualitySD = "SD"
)

// Default returns a Config populated with repository defaults. Directory
// fields left empty are derived from WorkDir during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
		},
		CDN: CDN{
			MaintenanceURL:     defaultMaintenanceURL,
			BaseURL:            defaultCDNBaseURL,
			Platform:           defaultPlatform,
			Quality:            defaultQuality,
			UserAgent:          defaultUserAgent,
			TimeoutSeconds:     defaultTimeoutSeconds,
			RetryAttempts:      defaultRetryAttempts,
			RetryBackoffMillis: defaultRetryBackoffMillis,
			MarketInfoField:    defaultMarketInfoField,
			BundleVersionField: defaultBundleVersionField,
			BundleVersionSD:    defaultBundleVersionSD,
		},
		Catalog: Catalog{
			BundlePrefix: defaultBundlePrefix,
			BundleSuffix: defaultBundleSuffix,
		},
		Tools: Tools{
			BundleTool:    defaultBundleTool,
			TextureFormat: defaultTextureFormat,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
