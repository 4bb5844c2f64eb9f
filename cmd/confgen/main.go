package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"gopkg.in/yaml.v2"

	"github.com/spf13/viper"
)

// confgen собирает configs/values_<env>.yaml из базового файла и
// оверлея окружения; сервис сам никаких слияний не делает.

const baseConfigName = ".values.base"

func generate(env string) (string, error) {
	merged := viper.AllSettings()

	overlay := viper.New()
	overlay.SetConfigName(env)
	overlay.SetConfigType("yaml")
	overlay.AddConfigPath("configs/overlays")
	if err := overlay.ReadInConfig(); err == nil {
		for k, v := range overlay.AllSettings() {
			merged[k] = v
		}
	}

	bs, err := yaml.Marshal(merged)
	if err != nil {
		return "", errors.Wrap(err, "marshal config to yaml")
	}

	path := filepath.Join("configs", "values_"+env+".yaml")
	_ = os.Remove(path)
	out, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create values file")
	}
	if _, err = out.Write(bs); err != nil {
		_ = os.Remove(out.Name())
		return "", errors.Wrap(err, "write content")
	}
	if err = out.Close(); err != nil {
		return "", errors.Wrap(err, "close values file")
	}
	return path, nil
}

func main() {
	viper.SetConfigName(baseConfigName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath("configs")
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	envs := os.Args[1:]
	if len(envs) == 0 {
		envs = []string{"local"}
	}

	for _, env := range envs {
		path, err := generate(env)
		if err != nil {
			panic(err)
		}
		fmt.Printf("written %s\n", path)
	}
}
