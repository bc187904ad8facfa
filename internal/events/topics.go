package events

const (
	TopicOrderActivity     = "prints.order.activity"
	TopicInventoryReplaced = "prints.inventory.replaced"
)

// Partition key = order_id, so events for one order keep their order.
func PartitionKey(id string) []byte { return []byte(id) }
