/*
Package dynamo provides a DynamoDB-backed shift store.

PURPOSE:
  Implements shift.Store against DynamoDB for deployments where the shift
  board lives in a managed key/value store. Bookings and configuration
  stay in the relational store; only the contended path - the shift state
  machine - needs the key/value CAS.

CONDITIONAL TRANSITIONS:
  DynamoDB's ConditionExpression is exactly the compare-and-swap the state
  machine requires:

    ConditionExpression: "#status = :from"

  A ConditionalCheckFailedException means another writer moved the status
  first and is translated to shift.ErrStatusConflict.

TABLE:
  shifts (PK: id). Override the name with SHIFTS_TABLE. Local stacks can
  point DYNAMODB_ENDPOINT at dynamodb-local; credentials fall back to
  static "local" values the SDK requires but local DynamoDB ignores.
*/
package dynamo

import (
	"context"
	"errors"
	"os"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/pswdirect/care-engine/pricing"
	"github.com/pswdirect/care-engine/shift"
)

const defaultShiftsTableName = "shifts"

// Store implements shift.Store on DynamoDB.
type Store struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ shift.Store = (*Store)(nil)

func New(ddb *dynamodb.Client) *Store {
	return &Store{
		ddb:       ddb,
		tableName: getenvDefault("SHIFTS_TABLE", defaultShiftsTableName),
	}
}

// NewFromEnv builds the client from environment variables.
//
// Supported env vars (local-friendly):
//   - AWS_REGION (default: us-east-1)
//   - AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY (default: local)
//   - DYNAMODB_ENDPOINT (optional; e.g. http://dynamodb:8000)
func NewFromEnv(ctx context.Context) (*Store, error) {
	region := getenvDefault("AWS_REGION", "us-east-1")
	endpoint := os.Getenv("DYNAMODB_ENDPOINT")

	creds := credentials.NewStaticCredentialsProvider(
		getenvDefault("AWS_ACCESS_KEY_ID", "local"),
		getenvDefault("AWS_SECRET_ACCESS_KEY", "local"),
		"",
	)

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(creds),
	}
	if endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == dynamodb.ServiceID {
				return aws.Endpoint{URL: endpoint, SigningRegion: region, HostnameImmutable: true}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	return New(dynamodb.NewFromConfig(cfg)), nil
}

// =============================================================================
// ITEM MAPPING
// =============================================================================

type shiftItem struct {
	ID                 string   `dynamodbav:"id"`
	BookingID          string   `dynamodbav:"booking_id"`
	WorkerID           string   `dynamodbav:"worker_id"`
	WorkerName         string   `dynamodbav:"worker_name"`
	Services           []string `dynamodbav:"services"`
	Category           string   `dynamodbav:"category"`
	ScheduledDate      string   `dynamodbav:"scheduled_date"`
	ScheduledStart     string   `dynamodbav:"scheduled_start"`
	ScheduledEnd       string   `dynamodbav:"scheduled_end"`
	ClaimedAt          string   `dynamodbav:"claimed_at,omitempty"`
	CheckedInAt        string   `dynamodbav:"checked_in_at,omitempty"`
	CheckInLocation    string   `dynamodbav:"check_in_location,omitempty"`
	SignedOutAt        string   `dynamodbav:"signed_out_at,omitempty"`
	OvertimeMinutes    int      `dynamodbav:"overtime_minutes"`
	FlaggedForOvertime bool     `dynamodbav:"flagged_for_overtime"`
	PayRateSnapshot    string   `dynamodbav:"pay_rate_snapshot"`
	CareRecord         string   `dynamodbav:"care_record,omitempty"`
	Status             string   `dynamodbav:"status"`
}

func toItem(s shift.Shift) shiftItem {
	return shiftItem{
		ID:                 s.ID,
		BookingID:          s.BookingID,
		WorkerID:           s.WorkerID,
		WorkerName:         s.WorkerName,
		Services:           s.Services,
		Category:           string(s.Category),
		ScheduledDate:      formatDate(s.ScheduledDate),
		ScheduledStart:     formatTime(s.ScheduledStart),
		ScheduledEnd:       formatTime(s.ScheduledEnd),
		ClaimedAt:          formatTimePtr(s.ClaimedAt),
		CheckedInAt:        formatTimePtr(s.CheckedInAt),
		CheckInLocation:    s.CheckInLocation,
		SignedOutAt:        formatTimePtr(s.SignedOutAt),
		OvertimeMinutes:    s.OvertimeMinutes,
		FlaggedForOvertime: s.FlaggedForOvertime,
		PayRateSnapshot:    s.PayRateSnapshot.String(),
		CareRecord:         s.CareRecord,
		Status:             string(s.Status),
	}
}

func fromItem(it shiftItem) shift.Shift {
	snapshot, err := decimal.NewFromString(it.PayRateSnapshot)
	if err != nil {
		snapshot = decimal.Zero
	}
	return shift.Shift{
		ID:                 it.ID,
		BookingID:          it.BookingID,
		WorkerID:           it.WorkerID,
		WorkerName:         it.WorkerName,
		Services:           it.Services,
		Category:           pricing.Category(it.Category),
		ScheduledDate:      parseDate(it.ScheduledDate),
		ScheduledStart:     parseTime(it.ScheduledStart),
		ScheduledEnd:       parseTime(it.ScheduledEnd),
		ClaimedAt:          parseTimePtr(it.ClaimedAt),
		CheckedInAt:        parseTimePtr(it.CheckedInAt),
		CheckInLocation:    it.CheckInLocation,
		SignedOutAt:        parseTimePtr(it.SignedOutAt),
		OvertimeMinutes:    it.OvertimeMinutes,
		FlaggedForOvertime: it.FlaggedForOvertime,
		PayRateSnapshot:    snapshot,
		CareRecord:         it.CareRecord,
		Status:             shift.Status(it.Status),
	}
}

// =============================================================================
// SHIFT STORE
// =============================================================================

func (r *Store) CreateShift(ctx context.Context, s shift.Shift) error {
	av, err := attributevalue.MarshalMap(toItem(s))
	if err != nil {
		return err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	return err
}

func (r *Store) GetShift(ctx context.Context, id string) (shift.Shift, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return shift.Shift{}, err
	}
	if len(out.Item) == 0 {
		return shift.Shift{}, shift.ErrShiftNotFound
	}

	var it shiftItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return shift.Shift{}, err
	}
	return fromItem(it), nil
}

// TransitionShift writes the whole mutated item conditional on the stored
// status still being the expected one. A consistent read builds the
// candidate; the condition on the write is what makes the race safe.
func (r *Store) TransitionShift(ctx context.Context, id string, from shift.Status, apply func(*shift.Shift) error) (shift.Shift, error) {
	s, err := r.GetShift(ctx, id)
	if err != nil {
		return shift.Shift{}, err
	}
	if s.Status != from {
		return shift.Shift{}, shift.ErrStatusConflict
	}
	if err := apply(&s); err != nil {
		return shift.Shift{}, err
	}

	av, err := attributevalue.MarshalMap(toItem(s))
	if err != nil {
		return shift.Shift{}, err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("#status = :from"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":from": &types.AttributeValueMemberS{Value: string(from)},
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return shift.Shift{}, shift.ErrStatusConflict
		}
		return shift.Shift{}, err
	}
	return s, nil
}

func (r *Store) ShiftsByStatus(ctx context.Context, status shift.Status) ([]shift.Shift, error) {
	return r.scanShifts(ctx, string(status), "", "")
}

func (r *Store) CompletedShifts(ctx context.Context, from, to time.Time) ([]shift.Shift, error) {
	return r.scanShifts(ctx, string(shift.StatusCompleted), formatDate(from), formatDate(to))
}

// scanShifts filters by status (and optional date bounds) with a paged
// Scan. Job boards are small enough that a table scan is acceptable; a
// status GSI is the upgrade path if that stops being true.
func (r *Store) scanShifts(ctx context.Context, status, fromDate, toDate string) ([]shift.Shift, error) {
	filter := "#status = :status"
	names := map[string]string{"#status": "status"}
	values := map[string]types.AttributeValue{
		":status": &types.AttributeValueMemberS{Value: status},
	}
	if fromDate != "" {
		filter += " AND #date >= :from"
		names["#date"] = "scheduled_date"
		values[":from"] = &types.AttributeValueMemberS{Value: fromDate}
	}
	if toDate != "" {
		filter += " AND #date <= :to"
		names["#date"] = "scheduled_date"
		values[":to"] = &types.AttributeValueMemberS{Value: toDate}
	}

	var out []shift.Shift
	var startKey map[string]types.AttributeValue
	for {
		res, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          aws.String(filter),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, err
		}
		var items []shiftItem
		if err := attributevalue.UnmarshalListOfMaps(res.Items, &items); err != nil {
			return nil, err
		}
		for _, it := range items {
			out = append(out, fromItem(it))
		}
		if len(res.LastEvaluatedKey) == 0 {
			break
		}
		startKey = res.LastEvaluatedKey
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledDate.Equal(out[j].ScheduledDate) {
			return out[i].ScheduledDate.Before(out[j].ScheduledDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func parseTimePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := parseTime(s)
	return &t
}
