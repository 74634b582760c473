package dynamodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/xid"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
)

// Single table layout. Versioned entities keep their current state under
// v0000 and every saved revision under v<version>.
//
//	class#<id>      class     Class
//	doc#<id>        v0000     Document (current), v0001.. history
//	path#<path>     path      Path claim pointing at a document
//	template#<id>   v0000     Template (current), v0001.. history
const (
	attrPK   = "PK"
	attrSK   = "SK"
	attrKind = "Kind"

	kindClass    = "class"
	kindDocument = "document"
	kindPath     = "path"
	kindTemplate = "template"

	classPrefix    = "class#"
	docPrefix      = "doc#"
	pathPrefix     = "path#"
	templatePrefix = "template#"

	classSortKey = "class"
	pathSortKey  = "path"
	versionSortF = "v%04d"
)

var (
	errNoItem = errors.New("item does not exist")

	condNotExists = aws.String("attribute_not_exists(PK)")
	condExists    = aws.String("attribute_exists(PK)")
)

func versionKey(version int) string {
	return fmt.Sprintf(versionSortF, version)
}

func newID() string {
	return xid.New().String()
}

type classItem struct {
	PK       string
	SK       string
	Kind     string
	ParentID string
	Name     string
	Fields   []content.Field
	Created  time.Time
	Updated  time.Time
}

func newClassItem(class *content.Class) *classItem {
	fields := class.Fields
	if fields == nil {
		fields = []content.Field{}
	}
	return &classItem{
		PK:       classPrefix + class.ID,
		SK:       classSortKey,
		Kind:     kindClass,
		ParentID: class.ParentID,
		Name:     class.Name,
		Fields:   fields,
		Created:  class.Created,
		Updated:  class.Updated,
	}
}

func (it *classItem) toClass() content.Class {
	fields := it.Fields
	if fields == nil {
		fields = []content.Field{}
	}
	return content.Class{
		ID:       strings.TrimPrefix(it.PK, classPrefix),
		ParentID: it.ParentID,
		Name:     it.Name,
		Fields:   fields,
		Created:  it.Created,
		Updated:  it.Updated,
	}
}

// documentItem keeps values as a JSON string attribute
type documentItem struct {
	PK         string
	SK         string
	Kind       string
	ClassID    string
	ParentID   string
	TemplateID string
	Path       string
	Version    int
	Values     string
	Created    time.Time
	Updated    time.Time
}

func newDocumentItem(doc *content.Document, version int) (*documentItem, error) {
	values := doc.Values
	if values == nil {
		values = map[string]any{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode values: %w", err)
	}
	return &documentItem{
		PK:         docPrefix + doc.ID,
		SK:         versionKey(version),
		Kind:       kindDocument,
		ClassID:    doc.ClassID,
		ParentID:   doc.ParentID,
		TemplateID: doc.TemplateID,
		Path:       doc.Path,
		Version:    doc.Version,
		Values:     string(data),
		Created:    doc.Created,
		Updated:    doc.Updated,
	}, nil
}

func (it *documentItem) toDocument() (content.Document, error) {
	doc := content.Document{
		ID:         strings.TrimPrefix(it.PK, docPrefix),
		ClassID:    it.ClassID,
		ParentID:   it.ParentID,
		TemplateID: it.TemplateID,
		Path:       it.Path,
		Version:    it.Version,
		Created:    it.Created,
		Updated:    it.Updated,
	}
	if it.Values != "" {
		if err := json.Unmarshal([]byte(it.Values), &doc.Values); err != nil {
			return doc, fmt.Errorf("decode values of document %s: %w", doc.ID, err)
		}
	}
	if doc.Values == nil {
		doc.Values = map[string]any{}
	}
	return doc, nil
}

type pathItem struct {
	PK         string
	SK         string
	Kind       string
	DocumentID string
	ClassID    string
}

func newPathItem(doc *content.Document) *pathItem {
	return &pathItem{
		PK:         pathPrefix + doc.Path,
		SK:         pathSortKey,
		Kind:       kindPath,
		DocumentID: doc.ID,
		ClassID:    doc.ClassID,
	}
}

type templateItem struct {
	PK      string
	SK      string
	Kind    string
	Name    string
	Version int
	Body    string
	Created time.Time
	Updated time.Time
}

func newTemplateItem(tmpl *content.Template, version int) *templateItem {
	return &templateItem{
		PK:      templatePrefix + tmpl.ID,
		SK:      versionKey(version),
		Kind:    kindTemplate,
		Name:    tmpl.Name,
		Version: tmpl.Version,
		Body:    tmpl.Body,
		Created: tmpl.Created,
		Updated: tmpl.Updated,
	}
}

func (it *templateItem) toTemplate() content.Template {
	return content.Template{
		ID:      strings.TrimPrefix(it.PK, templatePrefix),
		Name:    it.Name,
		Version: it.Version,
		Body:    it.Body,
		Created: it.Created,
		Updated: it.Updated,
	}
}

func itemKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: pk},
		attrSK: &types.AttributeValueMemberS{Value: sk},
	}
}

func (c *RepositoryConfig) getItem(ctx context.Context, pk, sk string, dst any) error {
	out, err := c.API.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.Table),
		Key:            itemKey(pk, sk),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return err
	}
	if len(out.Item) == 0 {
		return errNoItem
	}
	return attributevalue.UnmarshalMap(out.Item, dst)
}

func (c *RepositoryConfig) putItem(ctx context.Context, item any, condition *string) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	_, err = c.API.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.Table),
		Item:                av,
		ConditionExpression: condition,
	})
	return err
}

func (c *RepositoryConfig) deleteItem(ctx context.Context, pk, sk string, condition *string) error {
	_, err := c.API.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(c.Table),
		Key:                 itemKey(pk, sk),
		ConditionExpression: condition,
	})
	return err
}

func (c *RepositoryConfig) transactPut(item any, condition *string, values map[string]types.AttributeValue, names map[string]string) (types.TransactWriteItem, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("marshal item: %w", err)
	}
	return types.TransactWriteItem{Put: &types.Put{
		TableName:                 aws.String(c.Table),
		Item:                      av,
		ConditionExpression:       condition,
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  names,
	}}, nil
}

func (c *RepositoryConfig) transactDelete(pk, sk string) types.TransactWriteItem {
	return types.TransactWriteItem{Delete: &types.Delete{
		TableName: aws.String(c.Table),
		Key:       itemKey(pk, sk),
	}}
}

// scanKind reads every item of one kind stored under sortKey
func scanKind[T any](ctx context.Context, c *RepositoryConfig, kind, sortKey string) ([]T, error) {
	paginator := dynamodb.NewScanPaginator(c.API, &dynamodb.ScanInput{
		TableName:        aws.String(c.Table),
		FilterExpression: aws.String("#kind = :kind AND #sk = :sk"),
		ExpressionAttributeNames: map[string]string{
			"#kind": attrKind,
			"#sk":   attrSK,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":kind": &types.AttributeValueMemberS{Value: kind},
			":sk":   &types.AttributeValueMemberS{Value: sortKey},
		},
		ConsistentRead: aws.Bool(true),
	})

	var items []T
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		batch := make([]T, 0, len(page.Items))
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", kind, err)
		}
		items = append(items, batch...)
	}
	return items, nil
}

// mapError translates DynamoDB errors into domain errors
func mapError(err error, op, resource, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errNoItem), isConditionFailed(err):
		return fmt.Errorf("%s %s: %w", resource, id, domain.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isConditionFailed(err error) bool {
	var failed *types.ConditionalCheckFailedException
	return errors.As(err, &failed)
}

// cancelledAt reports whether a transaction failed on the condition of its
// i-th item
func cancelledAt(err error, i int) bool {
	var cancelled *types.TransactionCanceledException
	if !errors.As(err, &cancelled) || i >= len(cancelled.CancellationReasons) {
		return false
	}
	code := cancelled.CancellationReasons[i].Code
	return code != nil && *code == "ConditionalCheckFailed"
}
