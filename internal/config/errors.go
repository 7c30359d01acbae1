package config

import "errors"

// ErrInvalidConfig wraps every Validate failure.
var ErrInvalidConfig = errors.New("invalid breedgrade configuration")

// ErrLoadConfig wraps failures reading the .env file, the YAML file or the environment.
var ErrLoadConfig = errors.New("cannot load breedgrade configuration")
