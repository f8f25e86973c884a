package types

import (
	"encoding/json"
	"fmt"
)

// MinCurrencyLength is the shortest accepted currency code.
const MinCurrencyLength = 3

// Money is an amount in the currency's minor unit. It is a value holder
// only and carries no arithmetic.
type Money struct {
	amount   int64
	currency string
}

// NewMoney validates amount (any integral number) and currency.
func NewMoney(amount any, currency string) (Money, error) {
	minor, ok := ToInt64(amount)
	if !ok {
		return Money{}, invalid(markerMoney, "amount", amount, "expected an integer in minor units")
	}

	if len(currency) < MinCurrencyLength {
		return Money{}, invalid(markerMoney, "currency", currency, "expected a currency code of at least 3 characters")
	}

	return Money{amount: minor, currency: currency}, nil
}

// MustMoney is NewMoney that panics on invalid input. Intended for literals.
func MustMoney(amount int64, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}

	return m
}

// Amount returns the amount in minor units.
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the currency code.
func (m Money) Currency() string {
	return m.currency
}

// String formats the value as "<amount> <currency>".
func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.amount, m.currency)
}

// MarshalJSON emits {"_sdkType":"Money","amount":...,"currency":...}.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		MarkerField: markerMoney,
		"amount":    m.amount,
		"currency":  m.currency,
	})
}

// UnmarshalJSON accepts {"amount":...,"currency":...} with or without marker.
func (m *Money) UnmarshalJSON(data []byte) error {
	var obj struct {
		Amount   json.Number `json:"amount"`
		Currency string      `json:"currency"`
	}

	err := json.Unmarshal(data, &obj)
	if err != nil {
		return invalid(markerMoney, "", string(data), "expected an {amount, currency} object")
	}

	parsed, err := NewMoney(obj.Amount, obj.Currency)
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}
