package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"cakeshop/internal/models"
)

// normalizeCakeDocument papers over legacy documents: category stored
// as a bare string and stock stored under varying numeric BSON types.
func normalizeCakeDocument(raw bson.M) (models.Cake, error) {
	if cat, ok := raw["category"].(string); ok {
		raw["category"] = []string{cat}
	}

	if val, ok := raw["stock"]; ok {
		switch typed := val.(type) {
		case int32:
			raw["stock"] = int(typed)
		case int64:
			raw["stock"] = int(typed)
		case float64:
			raw["stock"] = int(typed)
		case int:
			raw["stock"] = typed
		default:
			raw["stock"] = 0
		}
	} else {
		raw["stock"] = 0
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.Cake{}, err
	}

	var cake models.Cake
	if err := bson.Unmarshal(data, &cake); err != nil {
		return models.Cake{}, err
	}

	cake.InStock = cake.Stock > 0
	cake.IsOnSale = isCakeOnSale(cake.Price, cake.SaleEnabled, cake.SalePrice)

	return cake, nil
}

func decodeCakes(ctx context.Context, cursor *mongo.Cursor) ([]models.Cake, error) {
	cakes := make([]models.Cake, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}

		cake, err := normalizeCakeDocument(raw)
		if err != nil {
			return nil, err
		}

		cakes = append(cakes, cake)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return cakes, nil
}
