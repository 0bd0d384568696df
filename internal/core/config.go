package core

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ServerConfig collects the server flags so they can be checked in one place
type ServerConfig struct {
	APIHost     string `validate:"required,hostname|ip"`
	APIPort     int    `validate:"min=1,max=65535"`
	Dev         bool
	StoragePath string `validate:"omitempty,max=4096"`
	ArchivePath string `validate:"omitempty,max=4096"`
	PIDPath     string `validate:"omitempty,max=4096"`
	PIDLock     bool
	Workers     int `validate:"min=1,max=64"`
}

var configValidator = validator.New()

// Validate reports every failing field in a single error
func (c ServerConfig) Validate() error {
	if c.PIDLock && c.PIDPath == "" {
		return fmt.Errorf("-pid-lock flag requires the -pid flag to be set")
	}

	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s validation (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
