package database

// User queries
const (
	UserColumns = `id, name, email, role, region, created_at`

	GetUserByIDSQL = `
		SELECT ` + UserColumns + `
		FROM users WHERE id = $1`

	ListUsersSQL = `
		SELECT ` + UserColumns + `
		FROM users
		ORDER BY created_at ASC, id ASC`

	UpsertUserByEmailSQL = `
		INSERT INTO users (id, name, email, role, region)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			role = EXCLUDED.role,
			region = EXCLUDED.region
		RETURNING ` + UserColumns

	SeedUserSQL = `
		INSERT INTO users (id, name, email, role, region)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			role = EXCLUDED.role,
			region = EXCLUDED.region`
)

// Catalog queries
const (
	ListRestaurantsSQL = `
		SELECT id, name, region
		FROM restaurants
		WHERE ($1::text = '' OR region = $1::text)
		ORDER BY name ASC`

	GetRestaurantSQL = `
		SELECT id, name, region
		FROM restaurants WHERE id = $1`

	ListMenuItemsByRestaurantsSQL = `
		SELECT id, restaurant_id, name, price
		FROM menu_items
		WHERE restaurant_id = ANY($1)
		ORDER BY restaurant_id, price, name`

	MenuItemsForRestaurantSQL = `
		SELECT id, restaurant_id, name, price
		FROM menu_items
		WHERE restaurant_id = $1 AND id = ANY($2)`

	InsertRestaurantSQL = `
		INSERT INTO restaurants (id, name, region)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`

	InsertMenuItemSQL = `
		INSERT INTO menu_items (id, restaurant_id, name, price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`
)

// Cart queries
const (
	ListCartItemsSQL = `
		SELECT c.id, c.user_id, c.menu_item_id, c.restaurant_id, c.quantity, c.created_at, c.updated_at,
			   u.id, u.name, u.email, u.role, u.region, u.created_at,
			   m.id, m.restaurant_id, m.name, m.price,
			   r.id, r.name, r.region
		FROM cart_items c
		JOIN users u ON u.id = c.user_id
		JOIN menu_items m ON m.id = c.menu_item_id
		JOIN restaurants r ON r.id = c.restaurant_id
		WHERE ($1::text = '' OR u.region = $1::text)
		ORDER BY c.created_at DESC, c.id`

	// UpsertCartItemSQL keeps one row per (menu item, restaurant): a repeat
	// add increments the quantity and hands the row to the latest actor.
	UpsertCartItemSQL = `
		INSERT INTO cart_items (id, user_id, menu_item_id, restaurant_id, quantity)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (menu_item_id, restaurant_id) DO UPDATE SET
			quantity = cart_items.quantity + EXCLUDED.quantity,
			user_id = EXCLUDED.user_id,
			updated_at = NOW()
		RETURNING id, user_id, menu_item_id, restaurant_id, quantity, created_at, updated_at`

	GetCartItemSQL = `
		SELECT c.id, c.user_id, c.menu_item_id, c.restaurant_id, c.quantity, c.created_at, c.updated_at,
			   r.id, r.name, r.region
		FROM cart_items c
		JOIN restaurants r ON r.id = c.restaurant_id
		WHERE c.id = $1`

	DeleteCartItemSQL = `
		DELETE FROM cart_items WHERE id = $1`

	ClearCartSQL = `
		DELETE FROM cart_items c
		USING restaurants r
		WHERE r.id = c.restaurant_id
		  AND r.region = $1
		  AND ($2::text = '' OR c.restaurant_id = $2::text)`
)

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (id, user_id, restaurant_id, total_amount, status, payment_type, payment_details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	InsertOrderItemSQL = `
		INSERT INTO order_items (id, order_id, menu_item_id, quantity, position)
		VALUES ($1, $2, $3, $4, $5)`

	InsertOrderStatusLogSQL = `
		INSERT INTO order_status_log (order_id, status, changed_by, notes)
		VALUES ($1, $2, $3, $4)`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $2, updated_at = NOW()
		WHERE id = $1`

	UpdateOrderPaymentSQL = `
		UPDATE orders SET status = $2, payment_type = $3, payment_details = $4, updated_at = NOW()
		WHERE id = $1`

	orderSelect = `
		SELECT o.id, o.user_id, o.restaurant_id, o.total_amount, o.status, o.payment_type, o.payment_details,
			   o.created_at, o.updated_at,
			   r.id, r.name, r.region,
			   u.id, u.name, u.email, u.role, u.region, u.created_at
		FROM orders o
		JOIN restaurants r ON r.id = o.restaurant_id
		JOIN users u ON u.id = o.user_id`

	GetOrderByIDSQL = orderSelect + `
		WHERE o.id = $1`

	ListOrdersByRegionSQL = orderSelect + `
		WHERE r.region = $1
		ORDER BY o.created_at DESC, o.id`

	ListOrderItemsSQL = `
		SELECT oi.id, oi.order_id, oi.menu_item_id, oi.quantity,
			   m.id, m.restaurant_id, m.name, m.price
		FROM order_items oi
		JOIN menu_items m ON m.id = oi.menu_item_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.position`

	GetOrderStatusHistorySQL = `
		SELECT status, changed_by, changed_at, notes
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC`

	OrderExistsSQL = `
		SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`
)

// Payment method queries
const (
	PaymentMethodColumns = `id, user_id, type, details, created_at`

	ListPaymentMethodsSQL = `
		SELECT ` + PaymentMethodColumns + `
		FROM payment_methods
		WHERE user_id = $1
		ORDER BY created_at DESC, id`

	InsertPaymentMethodSQL = `
		INSERT INTO payment_methods (id, user_id, type, details)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + PaymentMethodColumns

	UpdatePaymentMethodSQL = `
		UPDATE payment_methods SET type = $2, details = $3
		WHERE id = $1
		RETURNING ` + PaymentMethodColumns
)
