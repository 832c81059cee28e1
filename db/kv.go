package db

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"reflect"
	"sync"
)

// KeyValueStore holds the in-memory store and a mutex for thread-safe
// access. When a file path is given, every write is flushed to disk as JSON
// so diagnostic sessions survive a restart.
type KeyValueStore struct {
	store    map[string]map[string][]storedValue // user -> key -> versions
	filePath string
	mu       sync.Mutex
}

// storedValue holds the JSON string, the registered type name of the
// original object, and the version.
type storedValue struct {
	JsonData string `json:"json_data"`
	TypeName string `json:"type_name"`
	Version  int    `json:"version"`
}

// NewKeyValueStore initializes a store. An empty filePath keeps the store
// purely in memory; otherwise existing contents are loaded from the file.
func NewKeyValueStore(filePath string) (*KeyValueStore, error) {
	kvs := &KeyValueStore{
		store:    make(map[string]map[string][]storedValue),
		filePath: filePath,
	}
	if filePath == "" {
		return kvs, nil
	}
	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return kvs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &kvs.store); err != nil {
			return nil, fmt.Errorf("failed to parse store file: %w", err)
		}
	}
	return kvs, nil
}

// Store checks that all fields in the given struct have JSON tags and
// stores the struct as JSON under the given version. An existing version is
// replaced in place.
func (kvs *KeyValueStore) Store(user, key string, value interface{}, version int) error {
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("value must be a struct")
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if _, ok := field.Tag.Lookup("json"); !ok {
			return fmt.Errorf("field %s does not have a json tag", field.Name)
		}
	}

	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}

	kvs.mu.Lock()
	defer kvs.mu.Unlock()

	if _, exists := kvs.store[user]; !exists {
		kvs.store[user] = make(map[string][]storedValue)
	}

	sv := storedValue{
		JsonData: string(jsonData),
		TypeName: t.String(),
		Version:  version,
	}

	existing := kvs.store[user][key]
	replaced := false
	for i, stored := range existing {
		if stored.Version == version {
			kvs.store[user][key][i] = sv
			replaced = true
			break
		}
	}
	if !replaced {
		kvs.store[user][key] = append(existing, sv)
		kvs.sortByVersion(user, key)
	}

	return kvs.persistLocked()
}

// sortByVersion sorts the versions of a key for a user in ascending order.
func (kvs *KeyValueStore) sortByVersion(user, key string) {
	values := kvs.store[user][key]
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && values[j-1].Version > values[j].Version; j-- {
			values[j-1], values[j] = values[j], values[j-1]
		}
	}
}

// persistLocked writes the store to disk. Callers must hold the mutex.
func (kvs *KeyValueStore) persistLocked() error {
	if kvs.filePath == "" {
		return nil
	}
	data, err := json.Marshal(kvs.store)
	if err != nil {
		return fmt.Errorf("failed to serialize store: %w", err)
	}
	if err := os.WriteFile(kvs.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to persist store: %w", err)
	}
	return nil
}

// Retrieve gets the latest stored value under the given user and key, and
// deserializes it into the original registered type.
func (kvs *KeyValueStore) Retrieve(userID, key string) (interface{}, error) {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()

	storedValues, err := kvs.versionsLocked(userID, key)
	if err != nil {
		return nil, err
	}
	return decode(storedValues[len(storedValues)-1])
}

// RetrieveAllVersions retrieves all versions of the stored value under the
// given user and key, oldest first.
func (kvs *KeyValueStore) RetrieveAllVersions(userID, key string) ([]interface{}, error) {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()

	storedValues, err := kvs.versionsLocked(userID, key)
	if err != nil {
		return nil, err
	}
	result := make([]interface{}, 0, len(storedValues))
	for _, sv := range storedValues {
		v, err := decode(sv)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

// ListByType returns the latest version of every key stored for the user
// whose value is of the given type.
func (kvs *KeyValueStore) ListByType(userID string, t reflect.Type) ([]interface{}, error) {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()

	userStore, exists := kvs.store[userID]
	if !exists {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	var result []interface{}
	for _, storedValues := range userStore {
		if len(storedValues) == 0 {
			continue
		}
		latest := storedValues[len(storedValues)-1]
		if latest.TypeName != t.String() {
			continue
		}
		v, err := decode(latest)
		if err != nil {
			log.Printf("[KVStore] Skipping undecodable value of type %s: %v", latest.TypeName, err)
			continue
		}
		result = append(result, v)
	}
	return result, nil
}

// DeleteKey removes all versions stored under the given user and key.
func (kvs *KeyValueStore) DeleteKey(userID, key string) error {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()

	userStore, exists := kvs.store[userID]
	if !exists {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if _, exists := userStore[key]; !exists {
		return fmt.Errorf("key %s: %w", key, ErrNotFound)
	}
	delete(userStore, key)
	return kvs.persistLocked()
}

func (kvs *KeyValueStore) versionsLocked(userID, key string) ([]storedValue, error) {
	userStore, exists := kvs.store[userID]
	if !exists {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	storedValues, exists := userStore[key]
	if !exists || len(storedValues) == 0 {
		return nil, fmt.Errorf("key %s: %w", key, ErrNotFound)
	}
	return storedValues, nil
}

// decode reconstructs a stored value into a pointer to its original type.
func decode(sv storedValue) (interface{}, error) {
	t, err := getTypeFromName(sv.TypeName)
	if err != nil {
		return nil, err
	}
	v := reflect.New(t).Interface()
	if err := json.Unmarshal([]byte(sv.JsonData), v); err != nil {
		return nil, err
	}
	return v, nil
}
