package util

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/golang/glog"
)

type Configuration interface {
	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetStringSlice(key string) []string
	SetDefault(key string, value interface{})
}

// LoadConfiguration reads the named TOML config file from the working
// directory, $HOME/.bpctl/, or /etc/bpctl/. Missing files are fine unless
// required is set.
func LoadConfiguration(configFileName string, required bool) (loaded bool) {

	viper.SetConfigName(configFileName)
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.bpctl")
	viper.AddConfigPath("/etc/bpctl/")

	if err := viper.MergeInConfig(); err != nil {
		if strings.Contains(err.Error(), "Not Found") {
			glog.V(1).Infof("Reading %s: %v", viper.ConfigFileUsed(), err)
		} else {
			glog.Fatalf("Reading %s: %v", viper.ConfigFileUsed(), err)
		}
		if required {
			glog.Fatalf("Failed to load %s.toml file from current directory, or $HOME/.bpctl/, or /etc/bpctl/"+
				"\n\nPlease use this command to generate the default %s.toml file\n"+
				"    bpctl scaffold -output=.\n\n\n",
				configFileName, configFileName)
		} else {
			return false
		}
	}

	glog.V(1).Infof("Reading %s", viper.ConfigFileUsed())
	return true
}

func GetViper() *viper.Viper {
	v := viper.GetViper()
	v.AutomaticEnv()
	v.SetEnvPrefix("bpctl")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}
