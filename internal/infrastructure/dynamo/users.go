package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-onboarding-api/internal/domain"
	"github.com/go-onboarding-api/internal/pkg/id"
)

// UserRepo provides typed DynamoDB operations for the users table.
//
// Phone number and email act as natural keys: Create refuses to write a
// record whose phone or email is already taken and reports the collision
// as domain.ErrConflict so callers can branch on it instead of parsing
// error text.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// Create mints a user_id, stamps timestamps and writes the record.
// Returns the stored record, or domain.ErrConflict when the phone number
// or email already belongs to another record.
func (r *UserRepo) Create(ctx context.Context, rec *domain.UserRecord) (*domain.UserRecord, error) {
	if _, err := r.GetByPhone(ctx, rec.PhoneNumber); err == nil {
		return nil, fmt.Errorf("phone number already registered: %w", domain.ErrConflict)
	}
	if rec.Email != "" {
		if _, err := r.GetByEmail(ctx, rec.Email); err == nil {
			return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
	}

	now := time.Now().UTC()
	u := *rec
	u.UserID = id.New()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Status == "" {
		u.Status = domain.StatusPending
	}

	item, err := attributevalue.MarshalMap(&u)
	if err != nil {
		return nil, fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return nil, fmt.Errorf("user id collision: %w", domain.ErrConflict)
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.UserRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	var u domain.UserRecord
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIdentifier resolves a login identifier: anything containing "@" is
// treated as an email, everything else as a phone number.
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.UserRecord, error) {
	if strings.Contains(identifier, "@") {
		return r.GetByEmail(ctx, identifier)
	}
	return r.GetByPhone(ctx, identifier)
}

func (r *UserRepo) GetByPhone(ctx context.Context, phoneNumber string) (*domain.UserRecord, error) {
	return r.queryGSI(ctx, "phone_number-index", "phone_number", phoneNumber)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.UserRecord, error) {
	return r.queryGSI(ctx, "email-index", "email", email)
}

func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("user_id", userID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// MarkVerified promotes the record and fills in the identity fields
// extracted during document verification.
func (r *UserRepo) MarkVerified(ctx context.Context, userID string, identity domain.VerifiedIdentity) error {
	return r.Update(ctx, userID, map[string]interface{}{
		"status":        domain.StatusVerified,
		"name":          identity.FirstName,
		"surname":       identity.LastName,
		"date_of_birth": identity.DateOfBirth,
	})
}

func (r *UserRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.UserRecord, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user by %s: %w", attr, domain.ErrNotFound)
	}
	var u domain.UserRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}
