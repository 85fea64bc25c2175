package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# LungScan configuration
version: "1.0"

# Remote prediction service
service:
  base_url: "http://localhost:8000"
  predict_path: "/predict/"   # multipart upload, field "file"
  health_path: "/docs"        # HEAD probe at startup
  timeout: 30s                # per prediction request
  probe_timeout: 5s
  max_upload_bytes: 10485760  # 10MB
  rate_limit: 0               # batch uploads per second, 0 = unlimited

# Image selection
input:
  allowed_types:
    - image/jpeg
    - image/jpg
    - image/png
    - image/gif
  watch_dir: ""               # drop folder watched for new images

# Exported reports
report:
  output_dir: "."
  timestamp_format: "2006-01-02 15:04:05"
  format: text                # text|markdown|json

# Terminal output
output:
  color_mode: auto            # auto|always|never
  verbose: false
  theme: default              # default|high-contrast|minimal
  emoji: true
`
}

// MinimalSampleConfig returns a configuration with only essential settings
func MinimalSampleConfig() string {
	return `version: "1.0"
service:
  base_url: "http://localhost:8000"
  timeout: 30s
report:
  output_dir: "."
`
}
