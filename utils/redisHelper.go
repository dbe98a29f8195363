package utils

import (
	"fmt"
	"reflect"
	"time"

	"github.com/avsecdata/acreditaciones_backend/config"
)

func GetCacheLifespan() time.Duration {
	minutes := 60
	return time.Duration(minutes) * time.Minute
}

func GetTypeName[T any]() string {
	var v T
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// key: "$TypeName:$id"
func StoreRedis[T any](obj any, id int) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.SetRedisObject(key, obj, GetCacheLifespan())
}

func RetrieveRedis[T any](id int) (*T, error) {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	var obj T
	exists, err := config.GetRedisObject(key, &obj)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return &obj, nil
}

func RemoveRedisItem[T any](id int) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.RemoveRedisKey(key)
}

// key: "$TypeName List"
func StoreRedisList[T any](obj any) error {
	key := GetTypeName[T]() + "List"
	return config.SetRedisObject(key, obj, GetCacheLifespan())
}

func RetrieveRedisList[T any]() ([]*T, error) {
	key := GetTypeName[T]() + "List"
	var list []*T
	exists, err := config.GetRedisObject(key, &list)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return list, nil
}

func RemoveRedisList[T any]() error {
	key := GetTypeName[T]() + "List"
	return config.RemoveRedisKey(key)
}

// RemoveRedisBoth clears both the item and list cache entries for a type.
func RemoveRedisBoth[T any](id int) error {
	if err := RemoveRedisItem[T](id); err != nil {
		return err
	}
	return RemoveRedisList[T]()
}
