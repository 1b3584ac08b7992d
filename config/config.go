// Package config carrega a configuração do serviço a partir de variáveis de ambiente
// (opcionalmente de um arquivo .env).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURI string `envconfig:"DATABASE_URI" required:"true"`
	Port        int    `envconfig:"PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text"` // text ou json

	RPCURL          string `envconfig:"RPC_URL" required:"true"`
	ChainID         int64  `envconfig:"CHAIN_ID" required:"true"`
	BRLXContract    string `envconfig:"BRLX_CONTRACT" required:"true"`
	BRLXDecimals    uint8  `envconfig:"BRLX_DECIMALS" default:"6"`
	SecondaryMarket string `envconfig:"SECONDARY_MARKET" required:"true"`

	// Chave usada nas operações privilegiadas (mint, saque, congelamento, KYC).
	// Sem ela as rotas /admin ficam desabilitadas.
	AdminPrivateKey string   `envconfig:"ADMIN_PRIVATE_KEY"`
	AdminToken      string   `envconfig:"ADMIN_TOKEN"`
	AdminAddresses  []string `envconfig:"ADMIN_ADDRESSES"`

	DeployFunctionURL       string `envconfig:"DEPLOY_FUNCTION_URL"`
	IdentityRegistryAddress string `envconfig:"IDENTITY_REGISTRY_ADDRESS"`

	KYCManagerAddress                      string `envconfig:"KYC_MANAGER_ADDRESS"`
	ClaimIssuerAddress                     string `envconfig:"CLAIM_ISSUER_ADDRESS"`
	IdentityFactoryAddress                 string `envconfig:"IDENTITY_FACTORY_ADDRESS"`
	IdentityImplementationAuthorityAddress string `envconfig:"IDENTITY_IMPLEMENTATION_AUTHORITY_ADDRESS"`
	IdentityProxyBytecode                  string `envconfig:"IDENTITY_PROXY_BYTECODE"`
	KYCClaimData                           string `envconfig:"KYC_CLAIM_DATA" default:"KYC approved"`

	TPFDecimals uint8  `envconfig:"TPF_DECIMALS" default:"6"`
	TPFMinValue string `envconfig:"TPF_MIN_VALUE" default:"1000.000000"`
	MintAmount  string `envconfig:"MINT_AMOUNT" default:"1000"`

	TxWaitTimeout    time.Duration `envconfig:"TX_WAIT_TIMEOUT" default:"2m"`
	TxPollInterval   time.Duration `envconfig:"TX_POLL_INTERVAL" default:"2s"`
	ListenerInterval time.Duration `envconfig:"LISTENER_INTERVAL" default:"5s"`
	ListingCacheSize int           `envconfig:"LISTING_CACHE_SIZE" default:"256"`
}

// Load lê o .env (se existir) e decodifica as variáveis de ambiente.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("falha ao ler .env: %v", err)
	}

	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("falha ao ler configuração: %w", err)
	}
	return c, nil
}

// KYCEnabled indica se a aprovação de KYC on-chain está configurada.
func (c *Config) KYCEnabled() bool {
	return c.KYCManagerAddress != "" && c.ClaimIssuerAddress != "" &&
		c.IdentityFactoryAddress != "" && c.IdentityImplementationAuthorityAddress != "" &&
		c.IdentityProxyBytecode != ""
}

// IsAdminAddress indica se o endereço pertence à lista de administradores.
func (c *Config) IsAdminAddress(address string) bool {
	for _, a := range c.AdminAddresses {
		if strings.EqualFold(strings.TrimSpace(a), address) {
			return true
		}
	}
	return false
}

// ConfigureLogger aplica o nível e o formato de log configurados ao logger padrão do logrus.
func (c *Config) ConfigureLogger() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("nível de log inválido %q: %w", c.LogLevel, err)
	}
	logrus.SetLevel(level)

	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
