package dto

import (
	domainuser "iasrentals/internal/domain/user"
)

// User is the public account payload returned by auth endpoints.
type User struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	Role               string `json:"role"`
	IsVerified         bool   `json:"is_verified"`
	AccountCreatedYear int    `json:"account_created_year,omitempty"`
	ProfileDescription string `json:"profile_description,omitempty"`
	ProfileImage       string `json:"profile_image,omitempty"`
}

// UserProfile extends User with private contact fields.
type UserProfile struct {
	User
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// OwnerCard is the owner summary embedded in property payloads.
type OwnerCard struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	AccountCreatedYear int    `json:"account_created_year,omitempty"`
	ProfileDescription string `json:"profile_description,omitempty"`
	ProfileImage       string `json:"profile_image,omitempty"`
}

type StatusMessage struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func MapUser(user *domainuser.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:                 string(user.ID),
		Email:              user.Email,
		Name:               user.Name,
		Role:               string(user.Role),
		IsVerified:         user.IsVerified,
		AccountCreatedYear: user.AccountCreatedYear,
		ProfileDescription: user.Description,
		ProfileImage:       user.ProfileImage,
	}
}

func MapUserProfile(user *domainuser.User) UserProfile {
	if user == nil {
		return UserProfile{}
	}
	return UserProfile{
		User:        MapUser(user),
		Phone:       user.Phone,
		DateOfBirth: user.DateOfBirth,
	}
}

func MapOwnerCard(user *domainuser.User) OwnerCard {
	if user == nil {
		return OwnerCard{}
	}
	return OwnerCard{
		ID:                 string(user.ID),
		Name:               user.Name,
		AccountCreatedYear: user.AccountCreatedYear,
		ProfileDescription: user.Description,
		ProfileImage:       user.ProfileImage,
	}
}

func NewAuthResponse(user *domainuser.User, token string) AuthResponse {
	return AuthResponse{Token: token, User: MapUser(user)}
}
