// Package dynamodb implements the todo storage gateway on a DynamoDB table
// keyed by (userId, todoId) with a GSI keyed by (userId, lowerCaseName).
package dynamodb

import (
	"context"
	"errors"

	"todobackend/application/ports"
	"todobackend/domain/todo"
	apperrors "todobackend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// TodoRepository implements ports.TodoRepository using DynamoDB
type TodoRepository struct {
	client    *dynamodb.Client
	tableName string
	nameIndex string
	logger    *zap.Logger
}

// NewTodoRepository creates a new TodoRepository
func NewTodoRepository(client *dynamodb.Client, tableName, nameIndex string, logger *zap.Logger) ports.TodoRepository {
	return &TodoRepository{
		client:    client,
		tableName: tableName,
		nameIndex: nameIndex,
		logger:    logger,
	}
}

// todoItem represents the DynamoDB item structure for a todo
type todoItem struct {
	UserID        string `dynamodbav:"userId"`
	TodoID        string `dynamodbav:"todoId"`
	Name          string `dynamodbav:"name"`
	LowerCaseName string `dynamodbav:"lowerCaseName"`
	DueDate       string `dynamodbav:"dueDate"`
	CreatedAt     string `dynamodbav:"createdAt"`
	Done          bool   `dynamodbav:"done"`
	AttachmentURL string `dynamodbav:"attachmentUrl"`
}

func toItem(t todo.Item) todoItem {
	return todoItem(t)
}

func fromItem(i todoItem) todo.Item {
	return todo.Item(i)
}

// QueryByOwner returns all items for the owner
func (r *TodoRepository) QueryByOwner(ctx context.Context, userID string) ([]todo.Item, error) {
	keyCond := expression.Key("userId").Equal(expression.Value(userID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, apperrors.NewDatabaseError("query todos", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	return r.query(ctx, input, "query todos")
}

// QueryByOwnerAndName queries the name index for an exact lower-case match.
// GSI queries are eventually consistent; DynamoDB does not allow strong
// reads on an index.
func (r *TodoRepository) QueryByOwnerAndName(ctx context.Context, userID, lowerCaseName string) ([]todo.Item, error) {
	keyCond := expression.Key("userId").Equal(expression.Value(userID)).
		And(expression.Key("lowerCaseName").Equal(expression.Value(lowerCaseName)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, apperrors.NewDatabaseError("query todos by name", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.nameIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	return r.query(ctx, input, "query todos by name")
}

// QueryByOwnerAndID retrieves a single item scoped to the owner
func (r *TodoRepository) QueryByOwnerAndID(ctx context.Context, userID, todoID string) (*todo.Item, error) {
	input := &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            itemKey(userID, todoID),
		ConsistentRead: aws.Bool(true),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		r.logger.Error("Failed to get todo item",
			zap.String("userID", userID),
			zap.String("todoId", todoID),
			zap.Error(err),
		)
		return nil, apperrors.NewDatabaseError("get todo", err)
	}

	if len(result.Item) == 0 {
		return nil, apperrors.NewNotFoundError("todo")
	}

	var item todoItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, apperrors.NewDatabaseError("unmarshal todo", err)
	}

	t := fromItem(item)
	return &t, nil
}

// Put unconditionally inserts or overwrites an item
func (r *TodoRepository) Put(ctx context.Context, item todo.Item) error {
	av, err := attributevalue.MarshalMap(toItem(item))
	if err != nil {
		return apperrors.NewDatabaseError("marshal todo", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to put todo item",
			zap.String("userID", item.UserID),
			zap.String("todoId", item.TodoID),
			zap.Error(err),
		)
		return apperrors.NewDatabaseError("put todo", err)
	}

	r.logger.Debug("Todo item stored",
		zap.String("userID", item.UserID),
		zap.String("todoId", item.TodoID),
	)

	return nil
}

// Update mutates the item's mutable fields only if it already exists. The
// attribute_exists condition makes the existence check and the write one
// serialized operation on the key.
func (r *TodoRepository) Update(ctx context.Context, userID, todoID string, update todo.Update) error {
	upd := expression.
		Set(expression.Name("name"), expression.Value(update.Name)).
		Set(expression.Name("lowerCaseName"), expression.Value(update.LowerCaseName)).
		Set(expression.Name("dueDate"), expression.Value(update.DueDate)).
		Set(expression.Name("done"), expression.Value(update.Done))
	cond := expression.AttributeExists(expression.Name("todoId"))

	expr, err := expression.NewBuilder().WithUpdate(upd).WithCondition(cond).Build()
	if err != nil {
		return apperrors.NewDatabaseError("update todo", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       itemKey(userID, todoID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return apperrors.NewNotFoundError("todo")
		}
		r.logger.Error("Failed to update todo item",
			zap.String("userID", userID),
			zap.String("todoId", todoID),
			zap.Error(err),
		)
		return apperrors.NewDatabaseError("update todo", err)
	}

	r.logger.Debug("Todo item updated",
		zap.String("userID", userID),
		zap.String("todoId", todoID),
	)

	return nil
}

// Delete removes the item; deleting a missing key succeeds
func (r *TodoRepository) Delete(ctx context.Context, userID, todoID string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       itemKey(userID, todoID),
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		r.logger.Error("Failed to delete todo item",
			zap.String("userID", userID),
			zap.String("todoId", todoID),
			zap.Error(err),
		)
		return apperrors.NewDatabaseError("delete todo", err)
	}

	r.logger.Debug("Todo item deleted",
		zap.String("userID", userID),
		zap.String("todoId", todoID),
	)

	return nil
}

// query runs a query and unmarshals the result pages into domain items
func (r *TodoRepository) query(ctx context.Context, input *dynamodb.QueryInput, op string) ([]todo.Item, error) {
	items := make([]todo.Item, 0)

	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.logger.Error("Query failed", zap.String("operation", op), zap.Error(err))
			return nil, apperrors.NewDatabaseError(op, err)
		}

		var pageItems []todoItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageItems); err != nil {
			return nil, apperrors.NewDatabaseError(op, err)
		}
		for _, it := range pageItems {
			items = append(items, fromItem(it))
		}
	}

	return items, nil
}

// itemKey builds the composite primary key for an item
func itemKey(userID, todoID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
		"todoId": &types.AttributeValueMemberS{Value: todoID},
	}
}
