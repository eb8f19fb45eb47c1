package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shop documents are owned by the storefront application. The assistant only reads them,
// so these types exist for schema description, index declarations and decoding samples.

const (
	UserRoleCustomer = "customer"
	UserRoleAdmin    = "admin"

	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"

	PromotionStatusUpcoming = "upcoming"
	PromotionStatusActive   = "active"
	PromotionStatusInactive = "inactive"
	PromotionStatusExpired  = "expired"

	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"

	PaymentMethodCOD     = "COD"
	PaymentMethodBanking = "Banking"
)

// OpenOrderStatuses are the statuses that hold a promotion redemption.
var OpenOrderStatuses = []string{
	OrderStatusPending, OrderStatusPaid, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered,
}

type ImageInfo struct {
	URL      string `bson:"url,omitempty" json:"url,omitempty"`
	PublicID string `bson:"publicId,omitempty" json:"publicId,omitempty"`
}

type BaseDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type User struct {
	BaseDocument `bson:",inline"`
	Username     string     `bson:"username" json:"username"`
	Email        string     `bson:"email" json:"email"`
	DisplayName  string     `bson:"displayName" json:"displayName"`
	Role         string     `bson:"role" json:"role"`
	Avatar       *ImageInfo `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Status       string     `bson:"status" json:"status"`
	Bio          string     `bson:"bio,omitempty" json:"bio,omitempty"`
	Phone        string     `bson:"phone" json:"phone"`
	AuthType     string     `bson:"authType" json:"authType"`
}

type Session struct {
	BaseDocument `bson:",inline"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	RefreshToken string             `bson:"refreshToken" json:"refreshToken"`
	ExpiresAt    time.Time          `bson:"expiresAt" json:"expiresAt"`
}

type Address struct {
	BaseDocument `bson:",inline"`
	IsDefault    bool               `bson:"isDefault" json:"isDefault"`
	Street       string             `bson:"street" json:"street"`
	Ward         string             `bson:"ward" json:"ward"`
	District     string             `bson:"district" json:"district"`
	City         string             `bson:"city" json:"city"`
	Country      string             `bson:"country" json:"country"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
}

type Category struct {
	BaseDocument `bson:",inline"`
	Name         string              `bson:"name" json:"name"`
	Slug         string              `bson:"slug" json:"slug"`
	ParentID     *primitive.ObjectID `bson:"parentId,omitempty" json:"parentId,omitempty"`
}

type Product struct {
	BaseDocument `bson:",inline"`
	Code         string             `bson:"code" json:"code"`
	Title        string             `bson:"title" json:"title"`
	Slug         string             `bson:"slug" json:"slug"`
	Description  string             `bson:"description" json:"description"`
	Tag          []string           `bson:"tag" json:"tag"`
	CategoryID   primitive.ObjectID `bson:"categoryId" json:"categoryId"`
	Avatar       ImageInfo          `bson:"avatar" json:"avatar"`
}

type ProductVariantImage struct {
	BaseDocument `bson:",inline"`
	Color        string             `bson:"color" json:"color"`
	ProductID    primitive.ObjectID `bson:"productId" json:"productId"`
	Avatar       *ImageInfo         `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

type ProductVariant struct {
	BaseDocument          `bson:",inline"`
	SKU                   string              `bson:"sku,omitempty" json:"sku,omitempty"`
	Price                 float64             `bson:"price" json:"price"`
	Stock                 int                 `bson:"stock" json:"stock"`
	Color                 string              `bson:"color" json:"color"`
	Size                  string              `bson:"size" json:"size"`
	ProductID             primitive.ObjectID  `bson:"productId" json:"productId"`
	ProductVariantImageID *primitive.ObjectID `bson:"productVariantImageId,omitempty" json:"productVariantImageId,omitempty"`
}

type Promotion struct {
	BaseDocument   `bson:",inline"`
	Code           string    `bson:"code" json:"code"`
	Description    string    `bson:"description" json:"description"`
	DiscountType   string    `bson:"discountType" json:"discountType"`
	DiscountAmount float64   `bson:"discountAmount" json:"discountAmount"`
	Stock          int       `bson:"stock" json:"stock"`
	MinOrderAmount float64   `bson:"minOrderAmount" json:"minOrderAmount"`
	Active         string    `bson:"active" json:"active"`
	ExpiredAt      time.Time `bson:"expiredAt" json:"expiredAt"`
	StartedAt      time.Time `bson:"startedAt" json:"startedAt"`
}

type Order struct {
	BaseDocument  `bson:",inline"`
	OrderNumber   string              `bson:"orderNumber" json:"orderNumber"`
	Status        string              `bson:"status" json:"status"`
	ShippingFee   float64             `bson:"shippingFee" json:"shippingFee"`
	Total         float64             `bson:"total" json:"total"`
	Name          string              `bson:"name" json:"name"`
	Phone         string              `bson:"phone" json:"phone"`
	Address       string              `bson:"address" json:"address"`
	Note          string              `bson:"note,omitempty" json:"note,omitempty"`
	PaidAt        *time.Time          `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	ShippedAt     *time.Time          `bson:"shippedAt,omitempty" json:"shippedAt,omitempty"`
	DeliveredAt   *time.Time          `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	PromotionID   *primitive.ObjectID `bson:"promotionId,omitempty" json:"promotionId,omitempty"`
	UserID        primitive.ObjectID  `bson:"userId" json:"userId"`
	PaymentMethod string              `bson:"paymentMethod" json:"paymentMethod"`
}

type OrderItem struct {
	BaseDocument `bson:",inline"`
	OrderID      primitive.ObjectID `bson:"orderId" json:"orderId"`
	VariantID    primitive.ObjectID `bson:"variantId" json:"variantId"`
	Quantity     int                `bson:"quantity" json:"quantity"`
	Price        float64            `bson:"price" json:"price"`
}

type Review struct {
	BaseDocument `bson:",inline"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	ProductID    primitive.ObjectID `bson:"productId" json:"productId"`
	OrderItemID  primitive.ObjectID `bson:"orderItemId" json:"orderItemId"`
	Rating       int                `bson:"rating" json:"rating"`
	Content      string             `bson:"content" json:"content"`
	Color        string             `bson:"color,omitempty" json:"color,omitempty"`
	Size         string             `bson:"size,omitempty" json:"size,omitempty"`
	Likes        int                `bson:"likes" json:"likes"`
	Status       string             `bson:"status" json:"status"`
}

type CartItem struct {
	BaseDocument `bson:",inline"`
	VariantID    primitive.ObjectID `bson:"variantId" json:"variantId"`
	Quantity     int                `bson:"quantity" json:"quantity"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
}

type Favourite struct {
	BaseDocument `bson:",inline"`
	ProductID    primitive.ObjectID `bson:"productId" json:"productId"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
}

type Post struct {
	BaseDocument `bson:",inline"`
	Title        string    `bson:"title" json:"title"`
	Slug         string    `bson:"slug" json:"slug"`
	Content      string    `bson:"content" json:"content"`
	Author       string    `bson:"author" json:"author"`
	Category     string    `bson:"category" json:"category"`
	Status       string    `bson:"status" json:"status"`
	Thumbnail    ImageInfo `bson:"thumbnail" json:"thumbnail"`
}

type Contact struct {
	BaseDocument `bson:",inline"`
	FirstName    string `bson:"firstName" json:"firstName"`
	LastName     string `bson:"lastName" json:"lastName"`
	Phone        string `bson:"phone" json:"phone"`
	Email        string `bson:"email" json:"email"`
	Message      string `bson:"message" json:"message"`
	AdminNote    string `bson:"adminNote" json:"adminNote"`
}

// ShopCollections maps each storefront collection name to a zero value of its document type.
var ShopCollections = map[string]interface{}{
	"users":                User{},
	"sessions":             Session{},
	"addresses":            Address{},
	"categories":           Category{},
	"products":             Product{},
	"productvariantimages": ProductVariantImage{},
	"productvariants":      ProductVariant{},
	"promotions":           Promotion{},
	"orders":               Order{},
	"orderitems":           OrderItem{},
	"reviews":              Review{},
	"cartitems":            CartItem{},
	"favourites":           Favourite{},
	"posts":                Post{},
	"contacts":             Contact{},
}
