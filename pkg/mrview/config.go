package mrview

import (
	"flag"
	"os"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	ListenAddress string `env:"MRVIEW_LISTEN_ADDR" envDefault:":5984"`
	DataDir       string `env:"MRVIEW_DATA_DIR" envDefault:"./data"`
}

func NewConfig() (*Config, error) {
	cfg := new(Config)
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) ParseFlags() {
	flag.StringVar(&c.ListenAddress, "listen", c.ListenAddress, "address to listen on")
	flag.StringVar(&c.DataDir, "data", c.DataDir, "database directory")
	flag.Parse()
}

func (c *Config) BuildEngine() (*Engine, error) {
	err := os.MkdirAll(c.DataDir, 0755)
	if err != nil {
		return nil, err
	}
	return Open(c.DataDir)
}
