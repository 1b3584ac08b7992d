package services

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/ferreirogomes/tpf/chain"
	"github.com/ferreirogomes/tpf/models"
)

// KYCApprover aprova a identidade on-chain de uma carteira.
type KYCApprover interface {
	Approve(ctx context.Context, wallet string, country int) (models.KYC, error)
}

// KYCConfig reúne os contratos do ONCHAINID usados na aprovação.
type KYCConfig struct {
	Manager                 common.Address
	ClaimIssuer             common.Address
	IdentityFactory         common.Address
	ImplementationAuthority common.Address
	ProxyBytecode           []byte
	ClaimData               string
}

// KYCService calcula a identidade da carteira, assina a claim de KYC como emissor e
// envia approveKyc ao gerenciador com a chave do administrador.
type KYCService struct {
	Chain    Chain
	Signer   Signer
	Recorder TxRecorder
	Config   KYCConfig
}

func NewKYCService(c Chain, signer Signer, recorder TxRecorder, cfg KYCConfig) *KYCService {
	return &KYCService{Chain: c, Signer: signer, Recorder: recorder, Config: cfg}
}

func (s *KYCService) Approve(ctx context.Context, wallet string, country int) (models.KYC, error) {
	if s.Signer == nil {
		return models.KYC{}, ErrAdminDisabled
	}
	user, err := parseAddress("publicKey", wallet)
	if err != nil {
		return models.KYC{}, err
	}
	if country <= 0 || country > 0xffff {
		return models.KYC{}, invalidf("country: código inválido %d", country)
	}
	log := logrus.WithField("wallet", user.Hex())

	identity, err := chain.ComputeIdentityAddress(s.Config.IdentityFactory, s.Config.ImplementationAuthority, wallet, s.Config.ProxyBytecode)
	if err != nil {
		return models.KYC{}, err
	}

	data := []byte(s.Config.ClaimData)
	claimHash, err := chain.ClaimHash(identity, chain.ClaimTopicKYC, data)
	if err != nil {
		return models.KYC{}, err
	}
	signature, err := s.Signer.SignMessage(claimHash)
	if err != nil {
		return models.KYC{}, err
	}

	admin := s.Signer.Address()
	tx, err := s.Chain.PrepareApproveKyc(ctx, admin, s.Config.Manager, chain.KYCApproval{
		User:           user,
		ManagementKeys: [][32]byte{chain.ManagementKey(admin), chain.ManagementKey(s.Config.Manager)},
		Country:        uint16(country),
		Issuer:         s.Config.ClaimIssuer,
		Signature:      signature,
		Data:           data,
	})
	if err != nil {
		return models.KYC{}, err
	}

	hash, err := s.Signer.Send(ctx, "approveKyc", tx)
	if err != nil {
		return models.KYC{}, err
	}
	if s.Recorder != nil {
		if err := s.Recorder.Record(ctx, "approveKyc", admin, s.Config.Manager, hash); err != nil {
			log.WithError(err).Warn("falha ao registrar transação de KYC")
		}
	}
	log.WithField("hash", hash.Hex()).Info("KYC enviado, aguardando confirmação")

	if _, err := s.Chain.WaitTransaction(ctx, hash); err != nil {
		return models.KYC{}, fmt.Errorf("envio de KYC falhou, consulte a transação %s: %w", hash.Hex(), err)
	}

	return models.KYC{ClientIdentityAddress: identity.Hex(), TransactionHash: hash.Hex()}, nil
}
