package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/proxygate/accounts/internal/core/domain"
)

// DefaultAccountCollection is the collection the proxy gateway has always
// stored its users in.
const DefaultAccountCollection = "proxyusers"

// AccountRepository implements ports.AccountStore on a MongoDB collection.
type AccountRepository struct {
	col *mongo.Collection
}

// NewAccountRepository returns a repository over db.collection. An empty
// collection name selects DefaultAccountCollection.
func NewAccountRepository(db *mongo.Database, collection string) *AccountRepository {
	if collection == "" {
		collection = DefaultAccountCollection
	}
	return &AccountRepository{col: db.Collection(collection)}
}

// accountDoc is the stored shape. The hash lives under "password" so
// documents written by earlier versions of the gateway stay readable.
type accountDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Username   string             `bson:"username"`
	Password   string             `bson:"password"`
	Salt       string             `bson:"salt,omitempty"`
	Email      string             `bson:"email"`
	Roles      []string           `bson:"roles"`
	VMID       string             `bson:"vm_id"`
	VMIP       string             `bson:"vm_ip"`
	VMIPID     string             `bson:"vm_ip_id"`
	VolumeID   string             `bson:"volume_id"`
	DeviceType string             `bson:"device_type"`
	Approved   bool               `bson:"approved"`
	Created    time.Time          `bson:"created"`
}

func toDoc(a *domain.Account) accountDoc {
	roles := make([]string, len(a.Roles))
	for i, r := range a.Roles {
		roles[i] = string(r)
	}
	return accountDoc{
		Username:   a.Username,
		Password:   a.PasswordHash,
		Salt:       a.Salt,
		Email:      a.Email,
		Roles:      roles,
		VMID:       a.VMID,
		VMIP:       a.VMIP,
		VMIPID:     a.VMIPID,
		VolumeID:   a.VolumeID,
		DeviceType: a.DeviceType,
		Approved:   a.Approved,
		Created:    a.CreatedAt.UTC(),
	}
}

func (d accountDoc) toDomain() *domain.Account {
	roles := make([]domain.Role, len(d.Roles))
	for i, r := range d.Roles {
		roles[i] = domain.Role(r)
	}
	if len(roles) == 0 {
		roles = domain.DefaultRoles()
	}
	return &domain.Account{
		Username:     d.Username,
		PasswordHash: d.Password,
		Salt:         d.Salt,
		Email:        d.Email,
		Roles:        roles,
		VMID:         d.VMID,
		VMIP:         d.VMIP,
		VMIPID:       d.VMIPID,
		VolumeID:     d.VolumeID,
		DeviceType:   d.DeviceType,
		Approved:     d.Approved,
		CreatedAt:    d.Created.UTC(),
	}
}

// wrapError maps driver errors onto domain sentinels.
func wrapError(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrAccountNotFound
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrUniquenessConflict
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// Insert stores a new account document.
func (r *AccountRepository) Insert(ctx context.Context, a *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toDoc(a)); err != nil {
		return wrapError("insert account", err)
	}
	return nil
}

// Replace overwrites the document for a.Username, keeping its _id.
func (r *AccountRepository) Replace(ctx context.Context, a *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"username": a.Username}, toDoc(a))
	if err != nil {
		return wrapError("replace account", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// FindByUsername retrieves one account.
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		return nil, wrapError("find account", err)
	}
	return doc.toDomain(), nil
}

// List returns the accounts matching filter, oldest first.
func (r *AccountRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Approved != nil {
		query["approved"] = *filter.Approved
	}

	opts := options.Find().SetSort(bson.D{{Key: "created", Value: 1}, {Key: "username", Value: 1}})
	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, wrapError("list accounts", err)
	}
	defer cursor.Close(ctx)

	var docs []accountDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}

	accounts := make([]*domain.Account, 0, len(docs))
	for _, d := range docs {
		accounts = append(accounts, d.toDomain())
	}
	return accounts, nil
}

// Delete removes the account document.
func (r *AccountRepository) Delete(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return wrapError("delete account", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// EnsureIndexes creates the unique username and email indexes and the
// approval index used by the list queries.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "approved", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
