package config

import "testing"

func TestSetConfigGetConfig(t *testing.T) {
	previous := GetConfig()
	t.Cleanup(func() { SetConfig(previous) })

	cfg := validConfig()
	SetConfig(cfg)

	if GetConfig() != cfg {
		t.Error("GetConfig did not return the config passed to SetConfig")
	}
}
