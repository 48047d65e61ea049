// models.go

package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const OrderStatusPending = "Pending"

// User fields the storefront does not know about are kept in Extra and
// served back as top-level keys.
type User struct {
	ID       primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	Name     string                 `bson:"name" json:"name"`
	Email    string                 `bson:"email" json:"email"`
	Password string                 `bson:"password,omitempty" json:"-"`
	Extra    map[string]interface{} `bson:",inline" json:"-"`
}

type userFields User

func (u User) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(userFields(u), u.Extra)
}

// Product is a catalog document as stored. Only id, stock and image have a
// meaning here; every other key is passed through untouched.
type Product map[string]interface{}

func (p *Product) UnmarshalJSON(data []byte) error {
	doc, err := decodeDocument(data)
	if err != nil {
		return err
	}
	*p = Product(doc)
	return nil
}

// Image is the value an order snapshots for this product, "" when unset.
func (p Product) Image() interface{} {
	if v, ok := p["image"]; ok {
		return v
	}
	return ""
}

// LineItem is one entry of a cart or an order, kept exactly as the client
// sent it.
type LineItem map[string]interface{}

func (i *LineItem) UnmarshalJSON(data []byte) error {
	doc, err := decodeDocument(data)
	if err != nil {
		return err
	}
	*i = LineItem(doc)
	return nil
}

// ProductID is the raw "id" value, nil when absent.
func (i LineItem) ProductID() interface{} {
	return i["id"]
}

// WithImage returns a copy of the item carrying image.
func (i LineItem) WithImage(image interface{}) LineItem {
	out := make(LineItem, len(i)+1)
	for k, v := range i {
		out[k] = v
	}
	out["image"] = image
	return out
}

type Order struct {
	ID                    primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	UserEmail             string                 `bson:"user_email" json:"user_email"`
	Items                 []LineItem             `bson:"items" json:"items"`
	City                  string                 `bson:"city" json:"city"`
	Pincode               FlexString             `bson:"pincode" json:"pincode"`
	TotalPrice            interface{}            `bson:"total_price" json:"total_price"`
	Status                string                 `bson:"status" json:"status"`
	OrderDate             string                 `bson:"order_date" json:"order_date"`
	CancellationRequested bool                   `bson:"cancellationRequested" json:"cancellationRequested"`
	Extra                 map[string]interface{} `bson:",inline" json:"-"`
}

type orderFields Order

func (o Order) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(orderFields(o), o.Extra)
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserEmail string             `bson:"user_email" json:"user_email"`
	Items     []LineItem         `bson:"items" json:"items"`
}
