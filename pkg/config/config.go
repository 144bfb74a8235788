package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       Server      `mapstructure:"server"`
	Postgres     Postgres    `mapstructure:"postgres"`
	Broker       Broker      `mapstructure:"broker"`
	Auth         Auth        `mapstructure:"auth"`
	Cron         Cron        `mapstructure:"cron"`
	Relay        RelayConfig `mapstructure:"relay"`
	LoggingLevel string      `mapstructure:"logging-level"`
}

type Server struct {
	Port          string `mapstructure:"port"`
	SwaggerUrl    string `mapstructure:"swagger_json"`
	SwaggerHost   string `mapstructure:"swagger_host"`
	SwaggerSchema string `mapstructure:"swagger_schema"`
	BodyLimit     int    `mapstructure:"body_limit"`
}

type Postgres struct {
	ConnString     string `mapstructure:"conn_string"`
	MaxConnections int32  `mapstructure:"max_connections"`
}

type Broker struct {
	Kafka Kafka `mapstructure:"kafka"`
}

type Kafka struct {
	Brokers      string `mapstructure:"brokers"`
	ReaderTopic  string `mapstructure:"readerTopic"`
	ReaderUsr    string `mapstructure:"readerUsr"`
	ReaderUsrPwd string `mapstructure:"readerUsrPwd"`
	WriterTopic  string `mapstructure:"writerTopic"`
	WriterUsr    string `mapstructure:"writerUsr"`
	WriterUsrPwd string `mapstructure:"writerUsrPwd"`
	MaxAttempts  int    `mapstructure:"maxAttempts"`
}

type Auth struct {
	// Секрет подписи JWT (HS256). Субъект токена — username пользователя.
	JWTSecret string `mapstructure:"jwtSecret"`
}

type Cron struct {
	DaysToDelete int    `mapstructure:"daysToDelete"` // Активности старше стольких дней удаляются
	Schedule     string `mapstructure:"schedule"`     // Расписание в формате cron (например, "0 16 * * *")
	Interval     string `mapstructure:"interval"`     // Интервал в формате "@every 1m"
	// Приоритет: если указан Schedule, используется он, иначе Interval
}

type RelayConfig struct {
	Workers     int           `mapstructure:"workers"`
	BatchSize   int           `mapstructure:"batchSize"`
	Lease       time.Duration `mapstructure:"lease"`
	PollPeriod  time.Duration `mapstructure:"pollPeriod"`
	MaxAttempts int           `mapstructure:"maxAttempts"`
}

func NewConfig() (Config, error) {
	viper.AutomaticEnv()
	// Замена точек и дефисов на подчеркивания для переменных окружения
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	var conf Config
	err := viper.ReadInConfig()
	// Файл не обязателен — можно работать только на переменных окружения
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return conf, err
		}
	}

	err = viper.Unmarshal(&conf)

	return conf, err
}
