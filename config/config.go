package config

import (
	"strings"

	env "github.com/Netflix/go-env"
)

type (
	NodeConfig struct {
		Host string `env:"HOST,default=localhost"`
		Port int    `env:"PORT,default=9090"`

		MongoURI      string `env:"MONGO_URI,default=mongodb://localhost:27017"`
		MongoDatabase string `env:"MONGO_DATABASE,default=chain_chat"`

		RedisAddr     string `env:"REDIS_ADDR,default=localhost:6379"`
		RedisPassword string `env:"REDIS_PASSWORD"`
		RedisDB       int    `env:"REDIS_DB,default=0"`

		// OwnerAccount is the privileged identity for fee administration.
		OwnerAccount string `env:"OWNER_ACCOUNT,required=true"`
		// PermanentMessageFee seeds the fee on first boot only.
		PermanentMessageFee uint64 `env:"PERMANENT_MESSAGE_FEE,default=100"`
	}

	ClientConfig struct {
		// Endpoints is a comma-separated ranked list of node base URLs.
		Endpoints string `env:"NODE_ENDPOINTS,default=http://localhost:9090"`
		// FallbackMode is "sequential" or "fanout".
		FallbackMode string `env:"FALLBACK_MODE,default=sequential"`
		StartOffset  int64  `env:"START_OFFSET,default=0"`
		WalletPath   string `env:"WALLET_PATH,default=chain_chat_wallet.json"`
	}
)

func LoadNode() (*NodeConfig, error) {
	var c NodeConfig
	if _, err := env.UnmarshalFromEnviron(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func LoadClient() (*ClientConfig, error) {
	var c ClientConfig
	if _, err := env.UnmarshalFromEnviron(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *ClientConfig) EndpointList() []string {
	parts := strings.Split(c.Endpoints, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
