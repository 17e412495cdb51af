// ABOUTME: Config context shared by commands
// ABOUTME: Holds the viper instance and loaded settings
package config

import (
	"github.com/spf13/viper"
)

// Context carries configuration state shared by the CLI commands
type Context struct {
	Viper      *viper.Viper
	Settings   *Settings
	ConfigFile string
}

// NewContext returns a context with a fresh viper instance
func NewContext() *Context {
	return &Context{Viper: New()}
}

// Load resolves the settings from all sources into ctx.Settings
func (ctx *Context) Load() error {
	settings, err := Load(ctx.Viper, ctx.ConfigFile)
	if err != nil {
		return err
	}
	ctx.Settings = settings
	return nil
}
