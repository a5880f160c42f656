package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the slice of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	dynamodb.QueryAPIClient
}

// DynamoStore keeps documents in a single table keyed by (collection, id).
type DynamoStore struct {
	client    DynamoAPI
	tableName string
}

// dynamoDocument is the item layout.
type dynamoDocument struct {
	Collection string            `dynamodbav:"collection"`
	ID         string            `dynamodbav:"id"`
	Version    int               `dynamodbav:"version"`
	State      string            `dynamodbav:"state"`
	Keys       map[string]string `dynamodbav:"keys,omitempty"`
	UpdatedAt  string            `dynamodbav:"updated_at"`
}

// NewDynamoClient loads the default AWS credential chain. A non-empty
// endpoint points the client at DynamoDB Local.
func NewDynamoClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

func NewDynamoStore(client DynamoAPI, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName}
}

func (s *DynamoStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            dynamoKey(collection, id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if out.Item == nil {
		return nil, nil
	}
	doc, err := fromDynamoItem(out.Item)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *DynamoStore) Find(ctx context.Context, collection, key, value string) ([]Document, error) {
	p := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("#c = :c"),
		FilterExpression:       aws.String("#keys.#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#c":    "collection",
			"#keys": "keys",
			"#k":    key,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: collection},
			":v": &types.AttributeValueMemberS{Value: value},
		},
		ScanIndexForward: aws.Bool(true),
		ConsistentRead:   aws.Bool(true),
	})

	var docs []Document
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("find %s by %s: %w", collection, key, err)
		}
		for _, item := range page.Items {
			doc, err := fromDynamoItem(item)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *DynamoStore) Put(ctx context.Context, doc Document, expectedVersion int) (int, error) {
	next := expectedVersion + 1
	item, err := toDynamoItem(doc, next, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	in := &dynamodb.PutItemInput{
		TableName:                aws.String(s.tableName),
		Item:                     item,
		ExpressionAttributeNames: map[string]string{"#c": "collection"},
	}
	if expectedVersion == 0 {
		in.ConditionExpression = aws.String("attribute_not_exists(#c)")
	} else {
		in.ConditionExpression = aws.String("#v = :expected")
		in.ExpressionAttributeNames = map[string]string{"#v": "version"}
		in.ExpressionAttributeValues = map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.Itoa(expectedVersion)},
		}
	}

	if _, err := s.client.PutItem(ctx, in); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return 0, fmt.Errorf("%w: %s/%s expected version %d", ErrVersionConflict, doc.Collection, doc.ID, expectedVersion)
		}
		return 0, fmt.Errorf("put %s/%s: %w", doc.Collection, doc.ID, err)
	}
	return next, nil
}

func (s *DynamoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       dynamoKey(collection, id),
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func dynamoKey(collection, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"collection": &types.AttributeValueMemberS{Value: collection},
		"id":         &types.AttributeValueMemberS{Value: id},
	}
}

func toDynamoItem(doc Document, version int, now time.Time) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(dynamoDocument{
		Collection: doc.Collection,
		ID:         doc.ID,
		Version:    version,
		State:      string(doc.State),
		Keys:       doc.Keys,
		UpdatedAt:  now.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s/%s: %w", doc.Collection, doc.ID, err)
	}
	return item, nil
}

func fromDynamoItem(item map[string]types.AttributeValue) (Document, error) {
	var dd dynamoDocument
	if err := attributevalue.UnmarshalMap(item, &dd); err != nil {
		return Document{}, fmt.Errorf("unmarshal document: %w", err)
	}
	updatedAt, _ := time.Parse(time.RFC3339Nano, dd.UpdatedAt)
	return Document{
		Collection: dd.Collection,
		ID:         dd.ID,
		Version:    dd.Version,
		State:      json.RawMessage(dd.State),
		Keys:       dd.Keys,
		UpdatedAt:  updatedAt,
	}, nil
}
