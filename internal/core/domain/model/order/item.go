package order

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Item is one line of an order.
type Item struct {
	name      string
	quantity  int
	unitPrice kernel.Money
}

// NewItem requires a name and a positive quantity.
func NewItem(name string, quantity int, unitPrice kernel.Money) (Item, error) {
	name = strings.TrimSpace(name)

	var nameErr, qtyErr, priceErr error
	if name == "" {
		nameErr = errs.NewValueIsRequiredError("item name")
	}
	if quantity <= 0 {
		qtyErr = errs.NewValueIsInvalidErrorWithCause("item quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	if unitPrice < 0 {
		priceErr = errs.NewValueIsInvalidErrorWithCause("item price", fmt.Errorf("%d is negative", unitPrice))
	}
	if err := errors.Join(nameErr, qtyErr, priceErr); err != nil {
		return Item{}, err
	}

	return Item{name: name, quantity: quantity, unitPrice: unitPrice}, nil
}

func (i Item) Name() string {
	return i.name
}

func (i Item) Quantity() int {
	return i.quantity
}

func (i Item) UnitPrice() kernel.Money {
	return i.unitPrice
}

// Subtotal is quantity times unit price.
func (i Item) Subtotal() kernel.Money {
	return kernel.Money(int64(i.quantity) * i.unitPrice.MinorUnits())
}

// Contact is how the agent reaches the customer at hand-over.
type Contact struct {
	name  string
	phone string
}

func NewContact(name, phone string) (Contact, error) {
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)

	var nameErr, phoneErr error
	if name == "" {
		nameErr = errs.NewValueIsRequiredError("contact name")
	}
	if phone == "" {
		phoneErr = errs.NewValueIsRequiredError("contact phone")
	}
	if err := errors.Join(nameErr, phoneErr); err != nil {
		return Contact{}, err
	}

	return Contact{name: name, phone: phone}, nil
}

func (c Contact) Name() string {
	return c.name
}

func (c Contact) Phone() string {
	return c.phone
}
