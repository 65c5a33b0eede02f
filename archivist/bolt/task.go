package bolt

import (
	"encoding/json"
	"time"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"

	"github.com/bobinette/archivist/archivist"
)

type TaskRepository struct {
	Driver *Driver
}

func (r *TaskRepository) List() ([]archivist.Task, error) {
	tasks := make([]archivist.Task, 0)
	err := r.Driver.store.View(func(tx *bolt.Tx) error {
		return tx.Bucket(taskBucket).ForEach(func(_, data []byte) error {
			var task archivist.Task
			if err := json.Unmarshal(data, &task); err != nil {
				return err
			}
			tasks = append(tasks, task)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Upsert(task *archivist.Task) error {
	return r.Driver.store.Update(func(tx *bolt.Tx) error {
		if task.ID == "" {
			task.ID = uuid.New().String()
			task.CreatedAt = time.Now()
		}

		data, err := json.Marshal(task)
		if err != nil {
			return err
		}
		return tx.Bucket(taskBucket).Put([]byte(task.ID), data)
	})
}
