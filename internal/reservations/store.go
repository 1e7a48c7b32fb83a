package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/costatartessos/hotel-assistant/pkg/logging"
)

// DayRecord is the per-calendar-date aggregate of booked slots. Expiry is
// the latest end instant over all booked slots, advisory for storage
// reclamation only.
type DayRecord struct {
	Date   string            `dynamodbav:"date" json:"date"`
	Slots  map[string]string `dynamodbav:"reservations" json:"slots"`
	Expiry int64             `dynamodbav:"expiry,omitempty" json:"expiry,omitempty"`
}

// Booked reports whether the given slot is taken on this day.
func (r *DayRecord) Booked(slot string) bool {
	if r == nil {
		return false
	}
	_, ok := r.Slots[slot]
	return ok
}

// Store is the slot store. Correctness relies on BookSlot being an atomic
// conditional write scoped to one slot entry: of any set of concurrent
// booking attempts for the same slot, exactly one wins.
type Store interface {
	DayRecord(ctx context.Context, date string) (*DayRecord, error)
	BookSlot(ctx context.Context, date, slot, owner string, expiry int64) error
}

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// DynamoStore persists day records to DynamoDB, one item per date.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

var _ Store = (*DynamoStore)(nil)

// NewDynamoStore builds a store backed by the provided DynamoDB client.
func NewDynamoStore(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoStore {
	if client == nil {
		panic("reservations: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("reservations: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &DynamoStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// DayRecord fetches the record for a date. A missing item yields an empty
// record: every slot still free.
func (s *DynamoStore) DayRecord(ctx context.Context, date string) (*DayRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"date": &types.AttributeValueMemberS{Value: date},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("reservations: failed to fetch day record: %w", err)
	}
	if out.Item == nil {
		return &DayRecord{Date: date, Slots: map[string]string{}}, nil
	}

	var rec DayRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("reservations: failed to decode day record: %w", err)
	}
	if rec.Slots == nil {
		rec.Slots = map[string]string{}
	}
	return &rec, nil
}

// BookSlot claims slot -> owner on the given date. The write is guarded by
// attribute_not_exists on the specific slot entry; a lost race surfaces as
// ErrSlotAlreadyBooked. The day expiry is then extended, never shrunk.
func (s *DynamoStore) BookSlot(ctx context.Context, date, slot, owner string, expiry int64) error {
	if err := s.seedDayRecord(ctx, date); err != nil {
		return err
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"date": &types.AttributeValueMemberS{Value: date},
		},
		UpdateExpression: aws.String("SET reservations.#ts = :owner"),
		ExpressionAttributeNames: map[string]string{
			"#ts": slot,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: owner},
		},
		ConditionExpression: aws.String("attribute_not_exists(reservations.#ts)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("%w: %s", ErrSlotAlreadyBooked, slot)
		}
		return fmt.Errorf("reservations: failed to book slot: %w", err)
	}

	s.extendExpiry(ctx, date, expiry)
	return nil
}

// seedDayRecord makes sure the item and its reservations map exist before
// the nested slot update; DynamoDB rejects a document path into a missing
// map. Losing the conditional put means the record is already there.
func (s *DynamoStore) seedDayRecord(ctx context.Context, date string) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"date":         &types.AttributeValueMemberS{Value: date},
			"reservations": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{}},
		},
		ConditionExpression: aws.String("attribute_not_exists(#d)"),
		ExpressionAttributeNames: map[string]string{
			"#d": "date",
		},
	})
	if err != nil && !isConditionalCheckFailed(err) {
		return fmt.Errorf("reservations: failed to seed day record: %w", err)
	}
	return nil
}

// extendExpiry bumps the day expiry to the given instant if it is later
// than what is stored. Losing the conditional update means a later expiry
// is already recorded.
func (s *DynamoStore) extendExpiry(ctx context.Context, date string, expiry int64) {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"date": &types.AttributeValueMemberS{Value: date},
		},
		UpdateExpression: aws.String("SET expiry = :exp"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":exp": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiry)},
		},
		ConditionExpression: aws.String("attribute_not_exists(expiry) OR expiry < :exp"),
	})
	if err != nil && !isConditionalCheckFailed(err) {
		s.logger.Warn("failed to extend day expiry", "date", date, "error", err)
	}
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
