package consts

const (
	USDC_DECIMALS = 6

	// Keys used in BridgeTransaction.TxHashes.
	HOP_SKIP = "skipTx"
	HOP_LIFI = "lifiTx"

	DIRECTION_DYDX_TO_HL = "dydx-to-hl"
	DIRECTION_HL_TO_DYDX = "hl-to-dydx"

	COSMOS_MSG_TRANSFER = "/ibc.applications.transfer.v1.MsgTransfer"

	HYPERLIQUID_CREDIT_TOLERANCE = 0.99

	JOB_HISTORY_RECONCILE = "history_reconcile"
)
