package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of a virtuallinkctl configuration file.
// Fields left unset keep the flag value (the compiled-in default unless the
// flag was given), and a flag given on the command line overrides the file.
type fileConfig struct {
	Interface   string `yaml:"interface"`
	TxAddr      string `yaml:"tx_addr"`
	RxAddr      string `yaml:"rx_addr"`
	PANID       uint16 `yaml:"pan_id"`
	ShortAddr   uint16 `yaml:"short_addr"`
	Channel     uint8  `yaml:"channel"`
	Promiscuous bool   `yaml:"promiscuous"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
