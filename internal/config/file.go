package config

import (
    "fmt"
    "os"

    "gopkg.in/yaml.v3"
)

// applyFile reads a flat YAML document whose keys are environment variable
// names (APP_PORT: 8080) and exports every key that is not already set in
// the environment.  The process environment therefore always wins over the
// file, the same precedence godotenv applies to .env.
func applyFile(path string) error {
    data, err := os.ReadFile(path)
    if err != nil {
        return err
    }
    values := map[string]any{}
    if err := yaml.Unmarshal(data, &values); err != nil {
        return fmt.Errorf("parse yaml: %w", err)
    }
    for k, v := range values {
        if _, set := os.LookupEnv(k); set || v == nil {
            continue
        }
        if err := os.Setenv(k, fmt.Sprint(v)); err != nil {
            return fmt.Errorf("set %s: %w", k, err)
        }
    }
    return nil
}
