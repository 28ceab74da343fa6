package objectstore

import "testing"

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Endpoint:  "localhost:9000",
		AccessKey: "a",
		SecretKey: "b",
		Region:    "us-east-1",
		Bucket:    "sequencing-results",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}

	invalid := valid
	invalid.Endpoint = "http://localhost:9000"
	if err := invalid.Validate(); err == nil {
		t.Fatalf("Validate() expected error for scheme in endpoint")
	}

	invalid = valid
	invalid.Endpoint = ""
	if err := invalid.Validate(); err == nil {
		t.Fatalf("Validate() expected error for missing endpoint")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("MINIONPIPE_MINIO_ENDPOINT", "minio.lab:9000")
	t.Setenv("MINIONPIPE_MINIO_ACCESS_KEY", "minion")
	t.Setenv("MINIONPIPE_MINIO_SECRET_KEY", "miniosecret")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() err=%v", err)
	}
	if cfg.Endpoint != "minio.lab:9000" {
		t.Fatalf("Endpoint=%q", cfg.Endpoint)
	}
	if cfg.Bucket != "sequencing-results" {
		t.Fatalf("Bucket=%q, want default", cfg.Bucket)
	}
}

func TestConfigFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("MINIONPIPE_MINIO_ENDPOINT", "minio.lab:9000")
	t.Setenv("MINIONPIPE_MINIO_ACCESS_KEY", "")
	t.Setenv("MINIONPIPE_MINIO_SECRET_KEY", "")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatalf("ConfigFromEnv() expected error for missing credentials")
	}
}
