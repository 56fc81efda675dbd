package httpservice

import "fmt"

type Config struct {
	Port uint32
}

func (c Config) Validate() error {
	if c.Port == 0 {
		return fmt.Errorf("missing port")
	}
	return nil
}

func (c Config) address() string {
	return fmt.Sprintf(":%d", c.Port)
}
