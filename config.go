package main

import (
	"fmt"
	"os"
	"reflect"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/bug-c/github-backup/backup"
)

func parseConfigFile(path string) (*backup.Config, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = validateConfigKeys(yamlFile)
	if err != nil {
		return nil, err
	}

	conf := &backup.Config{}
	err = yaml.Unmarshal(yamlFile, conf)
	if err != nil {
		return nil, err
	}

	return conf, nil
}

// validateConfigKeys rejects config files containing keys the app does not
// know about, usually typos which yaml would otherwise silently drop.
func validateConfigKeys(yamlData []byte) error {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(yamlData, &raw); err != nil {
		return err
	}

	// github and organizations sections are mandatory
	if _, ok := raw["github"]; !ok {
		return fmt.Errorf("github config section is missing")
	}

	if _, ok := raw["organizations"]; !ok {
		return fmt.Errorf("organizations config section is missing")
	}

	// check config sections for unexpected keys
	allowedConfig := getAllowedKeys(backup.Config{})
	if key := findUnexpectedKey(raw, allowedConfig); key != "" {
		return fmt.Errorf("unexpected key: .%v", key)
	}

	// check "github" section
	githubMap, ok := raw["github"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("github section is missing or not valid")
	}
	allowedGithubKeys := getAllowedKeys(backup.GitHubConfig{})
	if key := findUnexpectedKey(githubMap, allowedGithubKeys); key != "" {
		return fmt.Errorf("unexpected key: .github.%v", key)
	}

	// check "backup" section if present
	if backupMap, ok := raw["backup"].(map[string]interface{}); ok {
		allowedBackupKeys := getAllowedKeys(backup.StoreConfig{})
		if key := findUnexpectedKey(backupMap, allowedBackupKeys); key != "" {
			return fmt.Errorf("unexpected key: .backup.%v", key)
		}
	}

	return nil
}

// getAllowedKeys retrieves a list of allowed keys from the specified struct
func getAllowedKeys(config interface{}) []string {
	var allowedKeys []string
	val := reflect.ValueOf(config)
	typ := reflect.TypeOf(config)

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		yamlTag := field.Tag.Get("yaml")
		if yamlTag != "" {
			allowedKeys = append(allowedKeys, yamlTag)
		}
	}
	return allowedKeys
}

func findUnexpectedKey(raw interface{}, allowedKeys []string) string {
	for key := range raw.(map[string]interface{}) {
		if !slices.Contains(allowedKeys, key) {
			return key
		}
	}

	return ""
}
