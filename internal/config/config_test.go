package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Events.Sink != "log" {
		t.Errorf("sink = %q", cfg.Events.Sink)
	}
	if cfg.Commission.Mode != "percentage" {
		t.Errorf("commission mode = %q", cfg.Commission.Mode)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MIGRATIONS", "YES")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("COMMISSION_VALUE", "12.5")
	t.Setenv("DB_PORT", "not-a-number")

	cfg := Load()
	if cfg.Server.Port != "9000" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if !cfg.App.Migrations {
		t.Error("expected migrations enabled")
	}
	if len(cfg.Events.KafkaBrokers) != 2 || cfg.Events.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("brokers = %v", cfg.Events.KafkaBrokers)
	}
	if cfg.Commission.Value != 12.5 {
		t.Errorf("commission = %v", cfg.Commission.Value)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("invalid int must fall back to default, got %d", cfg.Database.Port)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	if got := d.DSN(); got != "host=db port=5432 user=u password=p dbname=n sslmode=disable" {
		t.Errorf("DSN() = %q", got)
	}
	if got := d.URL(); got != "postgres://u:p@db:5432/n?sslmode=disable" {
		t.Errorf("URL() = %q", got)
	}
	d.DSNOverride = "postgres://x"
	if d.DSN() != "postgres://x" {
		t.Error("override must win")
	}
}
