// Package intent defines the fine-grained transaction intent vocabulary shared
// by all chain classifiers. Intents are best-effort signals derived from call
// data or transaction structure, never a decoded ground truth.
package intent

// Kind is the classified intent of a transaction.
type Kind string

const (
	NativeTransfer   Kind = "native_transfer"
	TokenTransfer    Kind = "token_transfer"
	TokenTransferFr  Kind = "token_transferFrom"
	TokenApprove     Kind = "token_approve"
	ContractCall     Kind = "contract_call"
	ContractCreation Kind = "contract_creation"

	// DEX swap variants, keyed off common router selectors.
	SwapExactTokensForTokens Kind = "swap_exactTokensForTokens"
	SwapTokensForExactTokens Kind = "swap_tokensForExactTokens"
	SwapExactETHForTokens    Kind = "swap_exactETHForTokens"
	SwapETHForExactTokens    Kind = "swap_ETHForExactTokens"
	SwapExactTokensForETH    Kind = "swap_exactTokensForETH"
	SwapTokensForExactETH    Kind = "swap_tokensForExactETH"
	SwapExactInputSingle     Kind = "swap_exactInputSingle"
	SwapExactInput           Kind = "swap_exactInput"
	SwapExactOutputSingle    Kind = "swap_exactOutputSingle"
	SwapExactOutput          Kind = "swap_exactOutput"

	AddLiquidity    Kind = "add_liquidity"
	RemoveLiquidity Kind = "remove_liquidity"

	// Wrapping and staking/lending operations. These are classified for
	// display purposes but deliberately receive no tax label.
	Deposit     Kind = "deposit"
	Withdraw    Kind = "withdraw"
	Stake       Kind = "stake"
	Unstake     Kind = "unstake"
	ClaimReward Kind = "claim_reward"
	Supply      Kind = "supply"
	Borrow      Kind = "borrow"
	Repay       Kind = "repay"

	// Governance extensions (chain overlays).
	GovernancePropose  Kind = "governance_propose"
	GovernanceVote     Kind = "governance_vote"
	GovernanceDelegate Kind = "governance_delegate"
	ValidatorRegister  Kind = "validator_register"

	// UTXO structural kinds.
	DataTransfer   Kind = "data_transfer"
	SubnetworkCall Kind = "subnetwork_call"
)

// IsSwap reports whether the kind is any DEX swap variant.
func (k Kind) IsSwap() bool {
	switch k {
	case SwapExactTokensForTokens, SwapTokensForExactTokens,
		SwapExactETHForTokens, SwapETHForExactTokens,
		SwapExactTokensForETH, SwapTokensForExactETH,
		SwapExactInputSingle, SwapExactInput,
		SwapExactOutputSingle, SwapExactOutput:
		return true
	}
	return false
}

// IsTransfer reports whether the kind moves value directly between wallets.
func (k Kind) IsTransfer() bool {
	switch k {
	case NativeTransfer, TokenTransfer, TokenTransferFr, DataTransfer:
		return true
	}
	return false
}
