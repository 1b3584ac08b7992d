package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Os ABIs abaixo cobrem apenas as funções que o serviço chama.

const erc20ABIJSON = `[
  {"type":"function","name":"approve","stateMutability":"nonpayable",
   "inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"transfer","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"mint","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"decimals","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"totalSupply","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"uint256"}]}
]`

// O contrato do título é um cofre (depósito de BRLX em troca de cotas) com as
// funções de congelamento do padrão ERC-3643.
const tpfABIJSON = `[
  {"type":"function","name":"deposit","stateMutability":"nonpayable",
   "inputs":[{"name":"assets","type":"uint256"},{"name":"receiver","type":"address"}],
   "outputs":[{"name":"shares","type":"uint256"}]},
  {"type":"function","name":"redeem","stateMutability":"nonpayable",
   "inputs":[{"name":"shares","type":"uint256"},{"name":"receiver","type":"address"},{"name":"owner","type":"address"}],
   "outputs":[{"name":"assets","type":"uint256"}]},
  {"type":"function","name":"withdraw","stateMutability":"nonpayable",
   "inputs":[{"name":"assets","type":"uint256"},{"name":"receiver","type":"address"},{"name":"owner","type":"address"}],
   "outputs":[{"name":"shares","type":"uint256"}]},
  {"type":"function","name":"previewDepositAt","stateMutability":"view",
   "inputs":[{"name":"assets","type":"uint256"},{"name":"timestamp","type":"uint256"}],
   "outputs":[{"name":"shares","type":"uint256"}]},
  {"type":"function","name":"unitPriceAt","stateMutability":"view",
   "inputs":[{"name":"timestamp","type":"uint256"}],
   "outputs":[{"name":"price","type":"uint256"}]},
  {"type":"function","name":"setAddressFrozen","stateMutability":"nonpayable",
   "inputs":[{"name":"userAddress","type":"address"},{"name":"freeze","type":"bool"}],
   "outputs":[]},
  {"type":"function","name":"isFrozen","stateMutability":"view",
   "inputs":[{"name":"userAddress","type":"address"}],
   "outputs":[{"name":"","type":"bool"}]}
]`

const marketABIJSON = `[
  {"type":"function","name":"listingIds","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"listings","stateMutability":"view",
   "inputs":[{"name":"","type":"uint256"}],
   "outputs":[
     {"name":"internalId","type":"uint256"},
     {"name":"token","type":"address"},
     {"name":"amount","type":"uint256"},
     {"name":"price","type":"uint256"},
     {"name":"seller","type":"address"},
     {"name":"isSold","type":"bool"},
     {"name":"isCanceled","type":"bool"}]},
  {"type":"function","name":"createListing","stateMutability":"nonpayable",
   "inputs":[{"name":"token","type":"address"},{"name":"amount","type":"uint256"},{"name":"price","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"cancelListing","stateMutability":"nonpayable",
   "inputs":[{"name":"listingId","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"buyListing","stateMutability":"nonpayable",
   "inputs":[{"name":"listingId","type":"uint256"}],
   "outputs":[]}
]`

const kycManagerABIJSON = `[
  {"type":"function","name":"approveKyc","stateMutability":"nonpayable",
   "inputs":[
     {"name":"_userAddress","type":"address"},
     {"name":"_identityOwner","type":"address"},
     {"name":"_managementKeys","type":"bytes32[]"},
     {"name":"_country","type":"uint16"},
     {"name":"_topic","type":"uint256"},
     {"name":"_scheme","type":"uint256"},
     {"name":"_issuer","type":"address"},
     {"name":"_signature","type":"bytes"},
     {"name":"_data","type":"bytes"},
     {"name":"_uri","type":"string"}],
   "outputs":[]}
]`

var (
	ERC20ABI      = mustParseABI(erc20ABIJSON)
	TPFABI        = mustParseABI(tpfABIJSON)
	MarketABI     = mustParseABI(marketABIJSON)
	KYCManagerABI = mustParseABI(kycManagerABIJSON)
)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}
