package venue

import "fmt"

// Venue trade result codes. Same numbering the MetaTrader protocol uses.
const (
	RetRequote = 10004
	RetPlaced  = 10008
	RetDone    = 10009
)

var retcodeText = map[int]string{
	10004: "Requote",
	10006: "Request rejected",
	10007: "Request canceled by trader",
	10008: "Order placed",
	10009: "Request completed",
	10010: "Request partially completed",
	10011: "Request processing error",
	10012: "Request timed out",
	10013: "Invalid request",
	10014: "Invalid volume",
	10015: "Invalid price",
	10016: "Invalid stops",
	10017: "Trade is disabled",
	10018: "Market is closed",
	10019: "Not enough money",
	10020: "Price changed",
	10021: "No quotes",
	10022: "Invalid expiration",
	10023: "Order state changed",
	10024: "Too frequent requests",
	10025: "No changes",
	10026: "Autotrading disabled by server",
	10027: "Autotrading disabled by client",
	10028: "Request locked for processing",
	10030: "No connection",
	10031: "Operation canceled",
	10032: "SL is too close to market",
	10033: "TP is too close to market",
	10034: "Order is closed",
	10035: "Position is closed",
	10036: "Too many requests",
	10038: "Position not found",
	10039: "Volume is too large",
	10040: "Volume is too small",
	10041: "Invalid SL",
	10042: "Invalid TP",
	10043: "History request failed",
	10044: "Trading disabled for symbol",
	10045: "Closing order only allowed",
	10046: "Order is being processed",
}

// RetcodeText maps a venue result code to a human-readable description.
func RetcodeText(code int) string {
	if s, ok := retcodeText[code]; ok {
		return s
	}
	return fmt.Sprintf("Unknown retcode: %d", code)
}
