package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// ClaimTopicKYC e ClaimSchemeECDSA identificam a claim de KYC emitida para a identidade.
	ClaimTopicKYC    = 1
	ClaimSchemeECDSA = 1

	kycGasLimit = 3_000_000
)

var (
	addressType, _ = abi.NewType("address", "", nil)
	uint256Type, _ = abi.NewType("uint256", "", nil)
	bytesType, _   = abi.NewType("bytes", "", nil)
)

// ComputeIdentityAddress calcula (CREATE2) o endereço da identidade on-chain que a fábrica
// implanta para wallet.
func ComputeIdentityAddress(factory, implementationAuthority common.Address, wallet string, proxyBytecode []byte) (common.Address, error) {
	if !common.IsHexAddress(wallet) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, wallet)
	}

	args := abi.Arguments{{Type: addressType}, {Type: addressType}}
	ctorArgs, err := args.Pack(implementationAuthority, common.HexToAddress(wallet))
	if err != nil {
		return common.Address{}, fmt.Errorf("falha ao codificar argumentos do proxy: %w", err)
	}

	initCode := make([]byte, 0, len(proxyBytecode)+len(ctorArgs))
	initCode = append(initCode, proxyBytecode...)
	initCode = append(initCode, ctorArgs...)

	var salt [32]byte
	copy(salt[:], crypto.Keccak256([]byte("OID"+wallet)))

	return crypto.CreateAddress2(factory, salt, crypto.Keccak256(initCode)), nil
}

// ClaimHash é o hash assinado pelo emissor: keccak256(abi.encode(identity, topic, data)).
func ClaimHash(identity common.Address, topic int64, data []byte) ([]byte, error) {
	args := abi.Arguments{{Type: addressType}, {Type: uint256Type}, {Type: bytesType}}
	encoded, err := args.Pack(identity, big.NewInt(topic), data)
	if err != nil {
		return nil, fmt.Errorf("falha ao codificar claim: %w", err)
	}
	return crypto.Keccak256(encoded), nil
}

// ManagementKey é a chave de gestão da identidade: keccak256(abi.encode(address)).
func ManagementKey(address common.Address) [32]byte {
	var key [32]byte
	copy(key[:], crypto.Keccak256(common.LeftPadBytes(address.Bytes(), 32)))
	return key
}

// KYCApproval reúne os argumentos de approveKyc.
type KYCApproval struct {
	User           common.Address
	ManagementKeys [][32]byte
	Country        uint16
	Issuer         common.Address
	Signature      []byte
	Data           []byte
}

// PrepareApproveKyc monta a aprovação de KYC no gerenciador, com limite de gás fixo.
func (c *Client) PrepareApproveKyc(ctx context.Context, from, manager common.Address, in KYCApproval) (*UnsignedTx, error) {
	args := []interface{}{
		in.User,
		in.User,
		in.ManagementKeys,
		in.Country,
		big.NewInt(ClaimTopicKYC),
		big.NewInt(ClaimSchemeECDSA),
		in.Issuer,
		in.Signature,
		in.Data,
		"",
	}
	return c.build(ctx, KYCManagerABI, from, manager, "approveKyc", args, withGasLimit(kycGasLimit))
}
