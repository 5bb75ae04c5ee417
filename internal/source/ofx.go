package source

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/theirongolddev/fincast/internal/model"
)

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagPattern  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// normalizeOFX repairs formatting quirks seen in bank exports that the
// strict parser rejects.
func normalizeOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagPattern.ReplaceAllString(content, "$1>")
}

// ParseOFX converts bank and credit card statement transactions into ledger
// records. Credits become revenue, debits become cost; zero-amount
// transactions are dropped.
func ParseOFX(r io.Reader) ([]model.Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(normalizeOFX(string(raw))))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing OFX: %v", ErrInvalidFile, err)
	}

	var records []model.Record
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			records = appendTransactions(records, stmt.BankTranList.Transactions)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			records = appendTransactions(records, stmt.BankTranList.Transactions)
		}
	}
	return records, nil
}

func appendTransactions(out []model.Record, txns []ofxgo.Transaction) []model.Record {
	for _, tx := range txns {
		amt, err := decimal.NewFromString(tx.TrnAmt.Rat.FloatString(4))
		if err != nil || amt.IsZero() {
			continue
		}
		flow := model.Revenue
		if amt.IsNegative() {
			flow = model.Cost
			amt = amt.Neg()
		}

		out = append(out, model.Record{
			Period:   model.PeriodOf(tx.DtPosted.Time).String(),
			FlowType: flow,
			Category: categoryOf(tx),
			Amount:   amt,
			Note:     noteOf(tx),
		})
	}
	return out
}

// categoryOf derives a category from the OFX transaction type, since
// statements carry no user categories.
func categoryOf(tx ofxgo.Transaction) string {
	switch t := tx.TrnType.String(); t {
	case "INT", "DIV":
		return "interest"
	case "FEE", "SRVCHG":
		return "bank fees"
	case "ATM", "CASH":
		return "cash"
	case "":
		return "uncategorized"
	default:
		return strings.ToLower(t)
	}
}

func noteOf(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	name := strings.TrimSpace(string(tx.Name))
	if name == "" {
		name = strings.TrimSpace(string(tx.Memo))
	}
	if tx.FiTID != "" {
		if name == "" {
			return string(tx.FiTID)
		}
		return name + " #" + string(tx.FiTID)
	}
	return name
}
