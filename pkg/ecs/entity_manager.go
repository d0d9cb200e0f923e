// Package ecs 房间里所有对象（墙、镜子、门、发射器、替身）共用的实体存储
//
// 组件按具体类型保存，系统通过 generics.go 中的泛型函数访问。
package ecs

import (
	"reflect"
	"sort"
)

// EntityID 实体句柄，也是激光核心里的 laser.Handle
type EntityID uint64

// InvalidEntity 表示"没有实体"
const InvalidEntity EntityID = 0

type componentSet map[reflect.Type]interface{}

// EntityManager 管理实体与组件
//
// 销毁是延迟的：DestroyEntity 只做标记，RemoveMarkedEntities 在帧末统一清理，
// 这样同一帧内其它系统仍能读到被销毁实体的组件。
type EntityManager struct {
	nextID   EntityID
	entities map[EntityID]componentSet
	marked   map[EntityID]struct{}
}

// NewEntityManager 创建实体管理器
func NewEntityManager() *EntityManager {
	return &EntityManager{
		nextID:   InvalidEntity + 1,
		entities: make(map[EntityID]componentSet),
		marked:   make(map[EntityID]struct{}),
	}
}

// CreateEntity 创建实体，ID 单调递增且不复用
func (em *EntityManager) CreateEntity() EntityID {
	id := em.nextID
	em.nextID++
	em.entities[id] = make(componentSet)
	return id
}

// Exists 实体是否存在；已标记但尚未清理的实体仍然存在
func (em *EntityManager) Exists(id EntityID) bool {
	_, ok := em.entities[id]
	return ok
}

// DestroyEntity 标记实体待删除，重复标记无效
func (em *EntityManager) DestroyEntity(id EntityID) {
	if !em.Exists(id) {
		return
	}
	em.marked[id] = struct{}{}
}

// IsMarked 实体是否已标记待删除
func (em *EntityManager) IsMarked(id EntityID) bool {
	_, ok := em.marked[id]
	return ok
}

// Count 当前实体数量（包含已标记的）
func (em *EntityManager) Count() int {
	return len(em.entities)
}

// AddComponent 添加或替换组件，实体不存在时忽略
func (em *EntityManager) AddComponent(id EntityID, component interface{}) {
	if set, ok := em.entities[id]; ok {
		set[reflect.TypeOf(component)] = component
	}
}

// RemoveComponent 移除组件
func (em *EntityManager) RemoveComponent(id EntityID, componentType reflect.Type) {
	if set, ok := em.entities[id]; ok {
		delete(set, componentType)
	}
}

// GetComponent 读取组件
func (em *EntityManager) GetComponent(id EntityID, componentType reflect.Type) (interface{}, bool) {
	comp, ok := em.entities[id][componentType]
	return comp, ok
}

// HasComponent 是否拥有组件
func (em *EntityManager) HasComponent(id EntityID, componentType reflect.Type) bool {
	_, ok := em.entities[id][componentType]
	return ok
}

// RemoveMarkedEntities 删除所有已标记的实体
func (em *EntityManager) RemoveMarkedEntities() {
	for id := range em.marked {
		delete(em.entities, id)
	}
	clear(em.marked)
}

// GetEntitiesWith 返回同时拥有全部组件类型的实体，按 ID 升序
//
// 激光、门、库存等系统依赖这个顺序让每帧结果可复现。
func (em *EntityManager) GetEntitiesWith(componentTypes ...reflect.Type) []EntityID {
	var result []EntityID
	for id, set := range em.entities {
		if hasAll(set, componentTypes) {
			result = append(result, id)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

func hasAll(set componentSet, types []reflect.Type) bool {
	for _, t := range types {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}
