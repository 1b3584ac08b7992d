package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"

	"github.com/ferreirogomes/tpf/blockchain_listener"
	"github.com/ferreirogomes/tpf/chain"
	"github.com/ferreirogomes/tpf/config"
	"github.com/ferreirogomes/tpf/handlers"
	"github.com/ferreirogomes/tpf/services"
	"github.com/ferreirogomes/tpf/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Falha ao carregar configuração: %v", err)
	}
	if err := cfg.ConfigureLogger(); err != nil {
		logrus.Fatalf("Falha ao configurar logger: %v", err)
	}

	db, err := storage.NewDB(cfg.DatabaseURI)
	if err != nil {
		logrus.Fatalf("Falha fatal ao conectar ao banco de dados e aplicar migrações: %v", err)
	}
	defer db.Close()

	market, err := chain.ParseAddress(cfg.SecondaryMarket)
	if err != nil {
		logrus.Fatalf("SECONDARY_MARKET inválido: %v", err)
	}
	brlx, err := chain.ParseAddress(cfg.BRLXContract)
	if err != nil {
		logrus.Fatalf("BRLX_CONTRACT inválido: %v", err)
	}
	client, eth, err := chain.Dial(cfg.RPCURL, market, chain.WithPolling(cfg.TxPollInterval, cfg.TxWaitTimeout))
	if err != nil {
		logrus.Fatalf("Falha ao conectar à rede: %v", err)
	}
	defer eth.Close()

	// Sem chave do administrador, as rotas que assinam respondem 503.
	var signer services.Signer
	if cfg.AdminPrivateKey != "" {
		w, err := chain.NewKeyWallet(cfg.AdminPrivateKey, cfg.ChainID, client.Backend())
		if err != nil {
			logrus.Fatalf("ADMIN_PRIVATE_KEY inválida: %v", err)
		}
		signer = w
		logrus.WithField("address", w.Address().Hex()).Info("carteira administrativa carregada")
	}

	txStore := db.Transactions()
	transactionService := services.NewTransactionService(txStore, client)
	flow := services.NewFlowRunner(client, signer, transactionService)

	var kyc services.KYCApprover
	if cfg.KYCEnabled() {
		kycService, err := newKYCService(cfg, client, signer, transactionService)
		if err != nil {
			logrus.Fatalf("Configuração de KYC inválida: %v", err)
		}
		kyc = kycService
	}

	tpfStore := db.Investments(cfg.TPFMinValue)
	userStore := db.Users()

	var deployer services.Deployer
	if cfg.DeployFunctionURL != "" {
		deployer = services.NewHTTPDeployer(cfg.DeployFunctionURL)
	}
	tpfService := services.NewTPFService(tpfStore, userStore, client, deployer, services.TPFConfig{
		BRLX:             brlx,
		BRLXDecimals:     cfg.BRLXDecimals,
		TPFDecimals:      cfg.TPFDecimals,
		IdentityRegistry: cfg.IdentityRegistryAddress,
	})
	tpfService.Signer = signer
	tpfService.Flow = flow
	tpfService.Recorder = transactionService

	marketService, err := services.NewMarketService(client, tpfStore, brlx, cfg.BRLXDecimals, cfg.ListingCacheSize)
	if err != nil {
		logrus.Fatalf("Falha ao inicializar mercado secundário: %v", err)
	}
	marketService.Flow = flow

	userService := services.NewUserService(userStore, kyc, cfg.IsAdminAddress)
	walletService := services.NewWalletService(client, signer, transactionService, brlx, cfg.BRLXDecimals, cfg.MintAmount)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Inicializa e inicia o listener da blockchain em uma goroutine separada
	listener := blockchain_listener.NewBlockchainListener(txStore, client, cfg.ListenerInterval)
	go listener.StartListening(ctx)
	logrus.Info("Listener da blockchain iniciado.")

	router := handlers.NewRouter(handlers.Handlers{
		TPF:         handlers.NewTPFHandler(tpfService),
		Market:      handlers.NewMarketHandler(marketService),
		Transaction: handlers.NewTransactionHandler(transactionService),
		User:        handlers.NewUserHandler(userService),
		Wallet:      handlers.NewWalletHandler(walletService),
		AdminToken:  cfg.AdminToken,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("falha ao encerrar servidor")
		}
	}()

	logrus.Infof("Servidor backend rodando na porta %d...", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Fatalf("Servidor encerrado com erro: %v", err)
	}
	logrus.Info("Servidor encerrado.")
}

func newKYCService(cfg *config.Config, client *chain.Client, signer services.Signer, recorder services.TxRecorder) (*services.KYCService, error) {
	addrs := make(map[string]common.Address, 4)
	for name, value := range map[string]string{
		"KYC_MANAGER_ADDRESS":                       cfg.KYCManagerAddress,
		"CLAIM_ISSUER_ADDRESS":                      cfg.ClaimIssuerAddress,
		"IDENTITY_FACTORY_ADDRESS":                  cfg.IdentityFactoryAddress,
		"IDENTITY_IMPLEMENTATION_AUTHORITY_ADDRESS": cfg.IdentityImplementationAuthorityAddress,
	} {
		addr, err := chain.ParseAddress(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		addrs[name] = addr
	}
	bytecode, err := hexutil.Decode(cfg.IdentityProxyBytecode)
	if err != nil {
		return nil, fmt.Errorf("IDENTITY_PROXY_BYTECODE: %w", err)
	}
	return services.NewKYCService(client, signer, recorder, services.KYCConfig{
		Manager:                 addrs["KYC_MANAGER_ADDRESS"],
		ClaimIssuer:             addrs["CLAIM_ISSUER_ADDRESS"],
		IdentityFactory:         addrs["IDENTITY_FACTORY_ADDRESS"],
		ImplementationAuthority: addrs["IDENTITY_IMPLEMENTATION_AUTHORITY_ADDRESS"],
		ProxyBytecode:           bytecode,
		ClaimData:               cfg.KYCClaimData,
	}), nil
}
