package config

// EnvPrefix is the envconfig prefix shared by every Giglane binary.
const EnvPrefix = "GIGLANE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "GIGLANE_DB_DSN"
	EnvDBHost = "GIGLANE_DB_HOST"
	EnvDBUser = "GIGLANE_DB_USER"
	EnvDBName = "GIGLANE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
