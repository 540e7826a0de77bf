package devops

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterAPI is the part of the SSM client used here.
type ParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// DBEntry is the YAML form of a database parameter.
type DBEntry struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

func (db DBEntry) GetDSN(driver string) (string, error) {
	if db.Host == "" || db.Name == "" {
		return "", fmt.Errorf("database entry needs host and name")
	}
	switch driver {
	case "mysql":
		host := db.Host
		if db.Port != 0 {
			host = fmt.Sprintf("%s:%d", host, db.Port)
		} else if !strings.Contains(host, ":") {
			host = host + ":3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", db.Username, db.Password, host, db.Name), nil
	case "postgres":
		port := db.Port
		if port == 0 {
			port = 5432
		}
		sslmode := db.SSLMode
		if sslmode == "" {
			sslmode = "require"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(db.Username, db.Password),
			Host:     fmt.Sprintf("%s:%d", db.Host, port),
			Path:     "/" + db.Name,
			RawQuery: "sslmode=" + sslmode,
		}
		return u.String(), nil
	}
	return "", fmt.Errorf("driver %q has no network dsn", driver)
}

// ParseDSNParameter accepts either a ready DSN or a YAML DBEntry.
func ParseDSNParameter(value, driver string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("parameter is empty")
	}

	var entry DBEntry
	if err := yaml.Unmarshal([]byte(value), &entry); err == nil && entry.Host != "" {
		return entry.GetDSN(driver)
	}
	return value, nil
}

func ResolveDSN(ctx context.Context, api ParameterAPI, name, driver string) (string, error) {
	out, err := api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s is empty", name)
	}

	dsn, err := ParseDSNParameter(*out.Parameter.Value, driver)
	if err != nil {
		return "", fmt.Errorf("parameter %s: %w", name, err)
	}
	return dsn, nil
}

func NewSSMClient(ctx context.Context) (*ssm.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ssm.NewFromConfig(cfg), nil
}
