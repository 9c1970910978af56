package config

type Driver interface {
	Exists() (bool, error)
	Read() (Config, error)
}

func NewStore(driver Driver) Store {
	return Store{
		driver: driver,
	}
}

type Store struct {
	driver Driver
}

// GetConfig returns the stored config, or the defaults when there is none.
func (p Store) GetConfig() (Config, error) {
	exists, err := p.driver.Exists()
	if err != nil {
		return Config{}, err
	}
	if !exists {
		return defaultConfig, nil
	}

	return p.driver.Read()
}
