package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"github.com/ferreirogomes/tpf/metrics"
)

// KeyWallet assina e envia transações com a chave do administrador. É usada apenas nas
// operações privilegiadas (mint de BRLX, saque, congelamento, KYC e fluxos custodiais).
type KeyWallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
	backend Backend
}

// NewKeyWallet carrega a chave privada em hexadecimal (com ou sem 0x).
func NewKeyWallet(hexKey string, chainID int64, backend Backend) (*KeyWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("chave privada do administrador inválida: %w", err)
	}
	return &KeyWallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: big.NewInt(chainID),
		backend: backend,
	}, nil
}

func (w *KeyWallet) Address() common.Address {
	return w.address
}

// Send assina a transação montada e a envia ao nó. Sem gasLimit, estima o gás e aplica a folga de 50%.
func (w *KeyWallet) Send(ctx context.Context, kind string, utx *UnsignedTx) (common.Hash, error) {
	if utx.From != w.address {
		return common.Hash{}, fmt.Errorf("transação de %s não pode ser assinada pela carteira %s", utx.From.Hex(), w.address.Hex())
	}

	var gasLimit uint64
	if utx.GasLimit != nil {
		gasLimit = uint64(*utx.GasLimit)
	} else {
		to := utx.To
		estimated, err := w.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:  utx.From,
			To:    &to,
			Value: utx.Value.ToInt(),
			Data:  utx.Data,
		})
		if err != nil {
			return common.Hash{}, rpcError(err, "falha ao estimar gás")
		}
		gasLimit = gasMargin(estimated)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    uint64(utx.Nonce),
		GasPrice: utx.GasPrice.ToInt(),
		Gas:      gasLimit,
		To:       &utx.To,
		Value:    utx.Value.ToInt(),
		Data:     utx.Data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("falha ao assinar transação: %w", err)
	}

	err = w.backend.SendTransaction(ctx, signed)
	metrics.TransactionsSent.WithLabelValues(kind, metrics.Result(err)).Inc()
	if err != nil {
		return common.Hash{}, rpcError(err, "falha ao enviar transação %s", kind)
	}

	logrus.WithFields(logrus.Fields{
		"kind": kind,
		"hash": signed.Hash().Hex(),
		"to":   utx.To.Hex(),
	}).Info("transação do administrador enviada")
	return signed.Hash(), nil
}

// SignMessage assina message no formato EIP-191 ("\x19Ethereum Signed Message:\n" + len).
func (w *KeyWallet) SignMessage(message []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(message), w.key)
	if err != nil {
		return nil, fmt.Errorf("falha ao assinar mensagem: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}
