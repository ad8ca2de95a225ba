// Package taxlabel maps classified intents to the closed export vocabulary.
//
// The mapping is deliberately conservative: a kind is only tagged when its tax
// treatment is unambiguous. A "deposit" could be a stake, loan collateral or a
// plain transfer, and a wrong tag has real consequences for the user, so
// everything ambiguous stays untagged and the tax software asks the user.
package taxlabel

import "github.com/username/chainfolio/backend/src/intent"

// The closed tag vocabulary. Versioned: additions only, never renames.
const (
	TagPayment         = "payment"
	TagReceive         = "receive"
	TagSwap            = "swap"
	TagAddLiquidity    = "add_liquidity"
	TagRemoveLiquidity = "remove_liquidity"
)

// labelTable holds only the kinds with a single defensible tax treatment.
// Staking, lending, claims, approvals and generic calls are intentionally
// absent and resolve to the empty tag.
var labelTable = map[intent.Kind]string{
	intent.SwapExactTokensForTokens: TagSwap,
	intent.SwapTokensForExactTokens: TagSwap,
	intent.SwapExactETHForTokens:    TagSwap,
	intent.SwapETHForExactTokens:    TagSwap,
	intent.SwapExactTokensForETH:    TagSwap,
	intent.SwapTokensForExactETH:    TagSwap,
	intent.SwapExactInputSingle:     TagSwap,
	intent.SwapExactInput:           TagSwap,
	intent.SwapExactOutputSingle:    TagSwap,
	intent.SwapExactOutput:          TagSwap,

	intent.AddLiquidity:    TagAddLiquidity,
	intent.RemoveLiquidity: TagRemoveLiquidity,

	intent.TokenTransfer:   TagPayment,
	intent.TokenTransferFr: TagPayment,
}

// MapToTaxLabel returns the export tag for a classified transaction, or ""
// when the intent is ambiguous. Native transfers bypass the table entirely:
// direction alone determines the tag.
func MapToTaxLabel(kind intent.Kind, isNativeTransfer, isSender bool) string {
	if isNativeTransfer {
		if isSender {
			return TagPayment
		}
		return TagReceive
	}
	return labelTable[kind]
}

// noteTable provides the human-readable description per intent. Kinds without
// an entry fall back to directional phrasing in NoteFor.
var noteTable = map[intent.Kind]string{
	intent.TokenTransfer:    "Token transfer",
	intent.TokenTransferFr:  "Token transfer (transferFrom)",
	intent.TokenApprove:     "Token spending approval",
	intent.ContractCall:     "Contract interaction",
	intent.ContractCreation: "Contract deployment",

	intent.SwapExactTokensForTokens: "Token swap via DEX router",
	intent.SwapTokensForExactTokens: "Token swap via DEX router",
	intent.SwapExactETHForTokens:    "Token swap via DEX router",
	intent.SwapETHForExactTokens:    "Token swap via DEX router",
	intent.SwapExactTokensForETH:    "Token swap via DEX router",
	intent.SwapTokensForExactETH:    "Token swap via DEX router",
	intent.SwapExactInputSingle:     "Token swap via DEX router",
	intent.SwapExactInput:           "Token swap via DEX router",
	intent.SwapExactOutputSingle:    "Token swap via DEX router",
	intent.SwapExactOutput:          "Token swap via DEX router",

	intent.AddLiquidity:    "Added liquidity to pool",
	intent.RemoveLiquidity: "Removed liquidity from pool",

	intent.Deposit:     "Deposit into contract",
	intent.Withdraw:    "Withdrawal from contract",
	intent.Stake:       "Staked tokens",
	intent.Unstake:     "Unstaked tokens",
	intent.ClaimReward: "Claimed rewards",
	intent.Supply:      "Supplied assets to lending pool",
	intent.Borrow:      "Borrowed assets",
	intent.Repay:       "Repaid borrowed assets",

	intent.GovernancePropose:  "Governance proposal",
	intent.GovernanceVote:     "Governance vote",
	intent.GovernanceDelegate: "Delegated voting power",
	intent.ValidatorRegister:  "Validator registration",

	intent.DataTransfer:   "Transfer with payload data",
	intent.SubnetworkCall: "Subnetwork transaction",
}

// NoteFor synthesizes the notes field: the per-intent label when one exists,
// otherwise "Sent {SYMBOL}" / "Received {SYMBOL}" by direction.
func NoteFor(kind intent.Kind, symbol string, isSender bool) string {
	if note, ok := noteTable[kind]; ok {
		return note
	}
	if isSender {
		return "Sent " + symbol
	}
	return "Received " + symbol
}
