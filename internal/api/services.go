package api

// Service accessors group Client methods by resource.
// Each service embeds *Client so it satisfies Requester directly.

type AttributesService struct{ *Client }

type AuthService struct{ *Client }

type CartService struct{ *Client }

type CategoriesService struct{ *Client }

type MediaService struct{ *Client }

type OrdersService struct{ *Client }

type PagesService struct{ *Client }

type ProductsService struct{ *Client }

type ProvincesService struct{ *Client }

type TagsService struct{ *Client }

type UsersService struct{ *Client }

func (c *Client) Attributes() AttributesService {
	return AttributesService{c}
}

func (c *Client) Auth() AuthService {
	return AuthService{c}
}

func (c *Client) Cart() CartService {
	return CartService{c}
}

func (c *Client) Categories() CategoriesService {
	return CategoriesService{c}
}

func (c *Client) Media() MediaService {
	return MediaService{c}
}

func (c *Client) Orders() OrdersService {
	return OrdersService{c}
}

func (c *Client) Pages() PagesService {
	return PagesService{c}
}

func (c *Client) Products() ProductsService {
	return ProductsService{c}
}

func (c *Client) Provinces() ProvincesService {
	return ProvincesService{c}
}

func (c *Client) Tags() TagsService {
	return TagsService{c}
}

func (c *Client) Users() UsersService {
	return UsersService{c}
}
