package controllers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fooddelivery/apperr"
	"fooddelivery/geo"
	"fooddelivery/middleware"
	"fooddelivery/models"
	"fooddelivery/utils"
)

// ListRestaurantsAPI is the JSON listing, 8 per page.
func ListRestaurantsAPI(w http.ResponseWriter, r *http.Request) {
	discover(w, r, models.RestaurantAPIPageSize)
}

// ListRestaurantsPage backs the browse page, 12 per page.
func ListRestaurantsPage(w http.ResponseWriter, r *http.Request) {
	discover(w, r, models.RestaurantViewPageSize)
}

func discover(w http.ResponseWriter, r *http.Request, perPage int) {
	f, err := discoveryFilter(r, perPage)
	if err != nil {
		fail(w, r, err)
		return
	}
	page, err := svc.Restaurants.Discover(r.Context(), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, page)
}

func discoveryFilter(r *http.Request, perPage int) (models.DiscoveryFilter, error) {
	q := r.URL.Query()
	f := models.DiscoveryFilter{
		Category:      q.Get("category"),
		PriceRange:    q.Get("price_range"),
		OpenNow:       queryBool(r, "open_now"),
		Tags:          queryTags(q),
		FavoritesOnly: queryBool(r, "favorites_only"),
		Search:        q.Get("search"),
		Sort:          q.Get("sort"),
		Trending:      queryBool(r, "trending"),
		Featured:      queryBool(r, "featured"),
		Page:          queryPage(r),
		PerPage:       perPage,
	}
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		uid := id.UserID
		f.Requester = &uid
	}
	origin, err := queryOrigin(q)
	if err != nil {
		return models.DiscoveryFilter{}, err
	}
	f.Origin = origin
	return f, nil
}

// queryTags accepts tags=a&tags=b, tags[]=a and tags=a,b.
func queryTags(q url.Values) []string {
	var tags []string
	for _, key := range []string{"tags", "tags[]"} {
		for _, v := range q[key] {
			for _, t := range strings.Split(v, ",") {
				if t = strings.TrimSpace(t); t != "" {
					tags = append(tags, t)
				}
			}
		}
	}
	return tags
}

func queryOrigin(q url.Values) (*geo.Point, error) {
	latRaw, lngRaw := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lng"))
	if latRaw == "" && lngRaw == "" {
		return nil, nil
	}

	fields := apperr.FieldErrors{}
	if latRaw == "" || lngRaw == "" {
		fields.Add("lat", "The lat and lng fields must be given together.")
		return nil, apperr.Validation(fields)
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil || lat < -90 || lat > 90 {
		fields.Add("lat", "The lat must be a number between -90 and 90.")
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil || lng < -180 || lng > 180 {
		fields.Add("lng", "The lng must be a number between -180 and 180.")
	}
	if !fields.Empty() {
		return nil, apperr.Validation(fields)
	}
	return &geo.Point{Lat: lat, Lng: lng}, nil
}

func GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Restaurant not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	detail, err := svc.Restaurants.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, detail)
}

func ListReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Restaurant not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	page, err := svc.Reviews.List(r.Context(), id, queryPage(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, page)
}

func SaveReview(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "Restaurant not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req models.ReviewRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	res, err := svc.Reviews.Save(r.Context(), a.UserID, id, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, res)
}

func DeleteReview(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "Restaurant not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := svc.Reviews.Delete(r.Context(), a.UserID, id); err != nil {
		fail(w, r, err)
		return
	}
	message(w, "Review deleted successfully.")
}

func AddFavorite(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "Restaurant not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := svc.Restaurants.AddFavorite(r.Context(), a.UserID, id); err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message":     "Restaurant added to favorites.",
		"is_favorite": true,
	})
}

func RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "Restaurant not found.")
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := svc.Restaurants.RemoveFavorite(r.Context(), a.UserID, id); err != nil {
		fail(w, r, err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message":     "Restaurant removed from favorites.",
		"is_favorite": false,
	})
}
