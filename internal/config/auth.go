package config

import "github.com/spf13/viper"

// Auth auth config struct
type Auth struct {
	JWT *JWT
}

// JWT verification config struct
type JWT struct {
	Secret string
}

func getAuthConfig(v *viper.Viper) *Auth {
	return &Auth{
		JWT: &JWT{Secret: v.GetString("auth.jwt.secret")},
	}
}
