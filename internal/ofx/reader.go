// Package ofx reads OFX/QFX bank and credit card statements.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/service"
)

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags missing their closing bracket at end of line.
	unclosedTagPattern = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// merchantPrefixes are card-processor noise stripped from transaction names.
var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
	"COMPRA TARJETA ",
	"PAGO TARJETA ",
}

// Reader converts statements into extraction records. Debits become
// positive amounts; credits come out negative so normalization drops them.
type Reader struct{}

// NewReader creates a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// preprocess fixes common formatting issues in OFX files.
func (r *Reader) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return unclosedTagPattern.ReplaceAllString(content, "$1>")
}

// Read parses a statement and returns one record per transaction.
func (r *Reader) Read(ctx context.Context, in io.Reader) ([]service.ExtractedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(r.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var records []service.ExtractedRecord
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			records = append(records, r.convertAll(stmt.BankTranList.Transactions)...)
			slog.Debug("Read bank statement",
				"account", stmt.BankAcctFrom.AcctID,
				"transactions", len(stmt.BankTranList.Transactions))
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			ccStmts++
			records = append(records, r.convertAll(stmt.BankTranList.Transactions)...)
			slog.Debug("Read credit card statement",
				"account", stmt.CCAcctFrom.AcctID,
				"transactions", len(stmt.BankTranList.Transactions))
		}
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(records),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return records, nil
}

func (r *Reader) convertAll(txs []ofxgo.Transaction) []service.ExtractedRecord {
	records := make([]service.ExtractedRecord, 0, len(txs))
	for _, tx := range txs {
		records = append(records, r.convert(tx))
	}
	return records
}

// convert maps one statement line. OFX signs debits negative; expenses are
// positive here.
func (r *Reader) convert(tx ofxgo.Transaction) service.ExtractedRecord {
	amount := new(big.Rat).Neg(&tx.TrnAmt.Rat)

	concept := merchantName(tx)
	memo := strings.TrimSpace(string(tx.Memo))
	if memo == concept {
		memo = ""
	}

	return service.ExtractedRecord{
		Date:    tx.DtPosted.Format(model.DateLayout),
		Concept: concept,
		Amount:  service.RawAmount(amount.FloatString(2)),
		Memo:    memo,
	}
}

// merchantName tries to get a clean merchant name from OFX data.
func merchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Drop a leading "MM/DD " date.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	default:
		return false
	}
}
