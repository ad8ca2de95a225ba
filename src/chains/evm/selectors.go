package evm

import (
	"strings"

	"github.com/username/chainfolio/backend/src/intent"
)

// Method selectors are the first 4 bytes of ABI-encoded call data. They are
// the only byte-exact intent signal an explorer API exposes without decoding
// the ABI or simulating execution, so classification stays a heuristic: a
// selector miss is a generic contract call, never an error.
//
// One base table is shared by every account-based chain; chain-specific
// extensions live in overlay tables consulted first, so a chain can both add
// kinds and shadow a base entry.

var baseSelectors = map[string]intent.Kind{
	// ERC-20
	"0xa9059cbb": intent.TokenTransfer,   // transfer(address,uint256)
	"0x23b872dd": intent.TokenTransferFr, // transferFrom(address,address,uint256)
	"0x095ea7b3": intent.TokenApprove,    // approve(address,uint256)

	// Uniswap V2 style routers
	"0x38ed1739": intent.SwapExactTokensForTokens,
	"0x8803dbee": intent.SwapTokensForExactTokens,
	"0x7ff36ab5": intent.SwapExactETHForTokens,
	"0xfb3bdb41": intent.SwapETHForExactTokens,
	"0x18cbafe5": intent.SwapExactTokensForETH,
	"0x4a25d94a": intent.SwapTokensForExactETH,

	// Uniswap V3 style routers
	"0x414bf389": intent.SwapExactInputSingle,
	"0xc04b8d59": intent.SwapExactInput,
	"0xdb3e2198": intent.SwapExactOutputSingle,
	"0xf28c0498": intent.SwapExactOutput,

	// Liquidity management
	"0xe8e33700": intent.AddLiquidity,    // addLiquidity
	"0xf305d719": intent.AddLiquidity,    // addLiquidityETH
	"0xbaa2abde": intent.RemoveLiquidity, // removeLiquidity
	"0x02751cec": intent.RemoveLiquidity, // removeLiquidityETH

	// Wrapping
	"0xd0e30db0": intent.Deposit,  // deposit()
	"0x2e1a7d4d": intent.Withdraw, // withdraw(uint256)

	// Staking
	"0xa694fc3a": intent.Stake,       // stake(uint256)
	"0x2e17de78": intent.Unstake,     // unstake(uint256)
	"0x3d18b912": intent.ClaimReward, // getReward()

	// Lending
	"0x617ba037": intent.Supply, // supply(address,uint256,address,uint16)
	"0xa415bcad": intent.Borrow, // borrow(address,uint256,uint256,uint16,address)
	"0x573ade81": intent.Repay,  // repay(address,uint256,uint256,address)
}

// chainOverlays extends the base table per chain. Entries here win over the
// base table for the named chain only.
var chainOverlays = map[string]map[string]intent.Kind{
	"ethereum": {
		"0xda95691a": intent.GovernancePropose,  // propose(...) governor bravo
		"0x56781388": intent.GovernanceVote,     // castVote(uint256,uint8)
		"0x5c19a95c": intent.GovernanceDelegate, // delegate(address)
	},
	"bsc": {
		"0xf340fa01": intent.Stake,             // deposit(address) validator pool
		"0x4d99dd16": intent.Unstake,           // undelegate(address,uint256)
		"0x982ef0a7": intent.ValidatorRegister, // createValidator(...)
	},
}

// ClassifyIntent determines the semantic kind of an account-based record.
// Decision order: no recipient means a contract creation, empty call data a
// plain native transfer, then the selector tables, then the generic fallback.
func ClassifyIntent(rec *RawTransaction, chain string) intent.Kind {
	if strings.TrimSpace(rec.To) == "" {
		return intent.ContractCreation
	}
	selector, ok := methodSelector(rec.Input)
	if !ok {
		return intent.NativeTransfer
	}
	if overlay, exists := chainOverlays[chain]; exists {
		if kind, hit := overlay[selector]; hit {
			return kind
		}
	}
	if kind, hit := baseSelectors[selector]; hit {
		return kind
	}
	return intent.ContractCall
}

// methodSelector extracts the normalized "0x"-prefixed 4-byte selector from a
// hex input string. Empty call data ("", "0x", "0x0") yields ok == false.
// Call data too short to hold a full selector is still call data, and maps to
// the zero-padded selector so it falls through to the generic kind.
func methodSelector(input string) (selector string, ok bool) {
	data := strings.ToLower(strings.TrimSpace(input))
	data = strings.TrimPrefix(data, "0x")
	data = strings.TrimLeft(data, "0")
	if data == "" {
		return "", false
	}
	data = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(input)), "0x")
	if len(data) < 8 {
		return "0x" + strings.Repeat("0", 8-len(data)) + data, true
	}
	return "0x" + data[:8], true
}
