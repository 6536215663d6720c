package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Rohit1034/HrudaySparshi/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client used by the product adapter.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoProductRepository stores products in a table keyed by product_id.
type DynamoProductRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoProductRepository(client DynamoAPI, table string) *DynamoProductRepository {
	return &DynamoProductRepository{client: client, table: table}
}

type ddbProduct struct {
	ProductID    string  `dynamodbav:"product_id"`
	Name         string  `dynamodbav:"name"`
	Category     string  `dynamodbav:"category"`
	Price        float64 `dynamodbav:"price"`
	Description  string  `dynamodbav:"description"`
	Image        string  `dynamodbav:"image"`
	Availability bool    `dynamodbav:"availability"`
	CreatedAt    string  `dynamodbav:"created_at"`
	UpdatedAt    string  `dynamodbav:"updated_at"`
}

var ddbAttribute = map[string]string{
	"name":         "name",
	"category":     "category",
	"price":        "price",
	"description":  "description",
	"image":        "image",
	"availability": "availability",
	"updatedAt":    "updated_at",
}

func toDDB(p *models.Product) ddbProduct {
	return ddbProduct{
		ProductID:    p.ID,
		Name:         p.Name,
		Category:     p.Category,
		Price:        p.Price,
		Description:  p.Description,
		Image:        p.Image,
		Availability: p.Availability,
		CreatedAt:    p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (dp ddbProduct) toModel() models.Product {
	p := models.Product{
		ID:           dp.ProductID,
		Name:         dp.Name,
		Category:     dp.Category,
		Price:        dp.Price,
		Description:  dp.Description,
		Image:        dp.Image,
		Availability: dp.Availability,
	}
	if t, err := time.Parse(time.RFC3339Nano, dp.CreatedAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, dp.UpdatedAt); err == nil {
		p.UpdatedAt = t
	}
	return p
}

func (d *DynamoProductRepository) key(id string) (map[string]types.AttributeValue, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"product_id": id})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	return key, nil
}

// List scans the table, optionally filtered by category, newest first.
func (d *DynamoProductRepository) List(ctx context.Context, category string) ([]models.Product, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(d.table)}
	if category != "" {
		input.FilterExpression = aws.String("#c = :c")
		input.ExpressionAttributeNames = map[string]string{"#c": "category"}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: category},
		}
	}

	products := []models.Product{}
	paginator := dynamodb.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan products: %w", err)
		}
		for _, item := range page.Items {
			var dp ddbProduct
			if err := attributevalue.UnmarshalMap(item, &dp); err != nil {
				return nil, fmt.Errorf("unmarshal item: %w", err)
			}
			products = append(products, dp.toModel())
		}
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (d *DynamoProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	key, err := d.key(id)
	if err != nil {
		return nil, err
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: aws.String(d.table), Key: key})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var dp ddbProduct
	if err := attributevalue.UnmarshalMap(out.Item, &dp); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	p := dp.toModel()
	return &p, nil
}

func (d *DynamoProductRepository) Create(ctx context.Context, product *models.Product) error {
	item, err := attributevalue.MarshalMap(toDDB(product))
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(product_id)"),
	})
	if err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

// Update sets the changed attributes. Attribute names go through
// placeholders since "name" is a reserved word.
func (d *DynamoProductRepository) Update(ctx context.Context, id string, update models.ProductUpdate, at time.Time) error {
	fields := update.Fields()
	fields["updatedAt"] = at.UTC().Format(time.RFC3339Nano)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	expr := "SET "
	names := make(map[string]string, len(keys))
	values := make(map[string]types.AttributeValue, len(keys))
	for i, k := range keys {
		attr := ddbAttribute[k]
		namePH := fmt.Sprintf("#a%d", i)
		valuePH := fmt.Sprintf(":v%d", i)
		if i > 0 {
			expr += ", "
		}
		expr += namePH + " = " + valuePH
		av, err := attributevalue.Marshal(fields[k])
		if err != nil {
			return fmt.Errorf("marshal update value: %w", err)
		}
		names[namePH] = attr
		values[valuePH] = av
	}

	key, err := d.key(id)
	if err != nil {
		return err
	}
	_, err = d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(d.table),
		Key:                       key,
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(product_id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return mapConditionErr(err, "update item failed")
}

func (d *DynamoProductRepository) Delete(ctx context.Context, id string) error {
	key, err := d.key(id)
	if err != nil {
		return err
	}
	_, err = d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(d.table),
		Key:                 key,
		ConditionExpression: aws.String("attribute_exists(product_id)"),
	})
	return mapConditionErr(err, "delete item failed")
}

func (d *DynamoProductRepository) Count(ctx context.Context) (int64, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(d.table), Select: types.SelectCount}
	paginator := dynamodb.NewScanPaginator(d.client, input)
	var total int64
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("scan count failed: %w", err)
		}
		total += int64(page.Count)
	}
	return total, nil
}

func mapConditionErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
