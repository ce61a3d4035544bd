package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"todoService/internal/logger"
	"todoService/internal/models/todo"
	repo "todoService/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// документ счётчика в коллекции <collection>-counters
const counterKey = "todos"

const slowQuery = 100 * time.Millisecond

type Storage struct {
	client   *mongo.Client
	todos    *mongo.Collection
	counters *mongo.Collection
}

type counter struct {
	Seq int64 `bson:"seq"`
}

func New(ctx context.Context, uri, database, collection string) (*Storage, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		logger.Error("Repository: Ошибка создания клиента MongoDB", err)
		return nil, fmt.Errorf("создание клиента: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	db := client.Database(database)
	s := &Storage{
		client:   client,
		todos:    db.Collection(collection),
		counters: db.Collection(collection + "-counters"),
	}

	s.ensureIndexes(ctx)

	if err := s.syncCounter(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("Repository: Успешное подключение к MongoDB",
		zap.String("database", database),
		zap.String("collection", collection))
	return s, nil
}

// ensureIndexes не валит запуск: в старых данных могут быть дубли id,
// тогда уникальный индекс не создастся и мы только предупреждаем
func (s *Storage) ensureIndexes(ctx context.Context) {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("id_unique"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}, {Key: "id", Value: -1}},
			Options: options.Index().SetName("created_at_desc"),
		},
	}

	if _, err := s.todos.Indexes().CreateMany(ctx, models); err != nil {
		logger.Warn("Repository: Не удалось создать индексы", zap.Error(err))
	}
}

// syncCounter поднимает счётчик до текущего максимального id,
// чтобы не выдать id, уже занятый данными без счётчика
func (s *Storage) syncCounter(ctx context.Context) error {
	var last todo.Todo
	opts := options.FindOne().
		SetSort(bson.D{{Key: "id", Value: -1}}).
		SetProjection(bson.D{{Key: "id", Value: 1}})

	err := s.todos.FindOne(ctx, bson.D{}, opts).Decode(&last)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		logger.Error("Repository: Не удалось получить максимальный id", err)
		return fmt.Errorf("получение максимального id: %w", err)
	}

	_, err = s.counters.UpdateOne(ctx,
		bson.M{"_id": counterKey},
		bson.M{"$max": bson.M{"seq": last.ID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		logger.Error("Repository: Не удалось синхронизировать счётчик", err)
		return fmt.Errorf("синхронизация счётчика: %w", err)
	}
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("закрытие соединения: %w", err)
	}
	logger.Info("Repository: Закрытие соединения MongoDB")
	return nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Info("Repository: Соединение стабильно")
	return nil
}

// nextID атомарно увеличивает счётчик одной операцией findAndModify
func (s *Storage) nextID(ctx context.Context) (int64, error) {
	var c counter
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": counterKey},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("получение следующего id: %w", err)
	}
	return c.Seq, nil
}

func (s *Storage) Create(ctx context.Context, todoToCreate *todo.Todo) error {
	start := time.Now()

	id, err := s.nextID(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось назначить id", err, zap.Duration("ms", time.Since(start)))
		return err
	}
	todoToCreate.ID = id

	_, err = s.todos.InsertOne(ctx, todoToCreate)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrUnacknowledgedWrite):
			return fmt.Errorf("добавление задачи: %w", repo.ErrNotAcknowledged)
		case mongo.IsDuplicateKeyError(err):
			logger.Warn("Repository: Дубликат id", zap.Int64("todo_id", id))
			return fmt.Errorf("добавление задачи: %w", repo.ErrDuplicateID)
		}
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	warnIfSlow(start)
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*todo.Todo, error) {
	start := time.Now()

	var found todo.Todo
	err := s.todos.FindOne(ctx, bson.M{"id": id}).Decode(&found)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	warnIfSlow(start)
	return &found, nil
}

// Find ищет подстроку в title без учёта регистра. Спецсимволы регулярных
// выражений экранируются, поэтому "(a)" ищется буквально.
func (s *Storage) Find(ctx context.Context, filter todo.Filter) ([]*todo.Todo, error) {
	start := time.Now()

	query := bson.M{}
	if filter.SearchTerm != "" {
		query["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.SearchTerm), Options: "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "id", Value: -1}})
	cursor, err := s.todos.Find(ctx, query, opts)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	todos := []*todo.Todo{}
	if err := cursor.All(ctx, &todos); err != nil {
		logger.Error("Repository: Ошибка итерации по курсору", err)
		return nil, fmt.Errorf("итерация по курсору: %w", err)
	}

	warnIfSlow(start)
	return todos, nil
}

func (s *Storage) Update(ctx context.Context, id int64, patch todo.Patch) error {
	start := time.Now()

	set := bson.M{"updatedAt": patch.UpdatedAt}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.IsCompleted != nil {
		set["isCompleted"] = *patch.IsCompleted
	}

	res, err := s.todos.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("обновление задачи: %w", err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow(start)
	return nil
}

// полное удаление из коллекции
func (s *Storage) Delete(ctx context.Context, id int64) error {
	start := time.Now()

	res, err := s.todos.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow(start)
	return nil
}

func warnIfSlow(start time.Time) {
	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
}
